package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

// TaskFormModel holds the raw values of the add-task form.
type TaskFormModel struct {
	Title    string
	Minutes  string
	Priority string
	Category string
	Energy   string
	Due      string
}

func newTaskFormModel() *TaskFormModel {
	return &TaskFormModel{
		Minutes:  "60",
		Priority: string(models.PriorityMedium),
		Category: string(models.CategoryHomework),
		Energy:   string(models.EnergyMedium),
	}
}

func newTaskForm(f *TaskFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&f.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Estimated minutes").
				Value(&f.Minutes).
				Validate(validateMinutes),
			huh.NewSelect[string]().
				Title("Priority").
				Options(huh.NewOptions(string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh))...).
				Value(&f.Priority),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(
					string(models.CategoryExam),
					string(models.CategoryProject),
					string(models.CategoryQuiz),
					string(models.CategoryHomework),
					string(models.CategoryReading),
				)...).
				Value(&f.Category),
			huh.NewSelect[string]().
				Title("Energy").
				Options(huh.NewOptions(string(models.EnergyLow), string(models.EnergyMedium), string(models.EnergyHigh))...).
				Value(&f.Energy),
			huh.NewInput().
				Title("Due date").
				Placeholder(constants.DateFormat).
				Value(&f.Due).
				Validate(validateDue),
		),
	).WithShowHelp(true)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of minutes")
	}
	return nil
}

func validateDue(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

// toTask converts the form into a new task created at now.
func (f *TaskFormModel) toTask(now time.Time) (models.Task, error) {
	if err := validateTitle(f.Title); err != nil {
		return models.Task{}, err
	}
	if err := validateMinutes(f.Minutes); err != nil {
		return models.Task{}, err
	}
	if err := validateDue(f.Due); err != nil {
		return models.Task{}, err
	}
	minutes, _ := strconv.Atoi(strings.TrimSpace(f.Minutes))

	priority, err := models.ParsePriority(f.Priority)
	if err != nil {
		return models.Task{}, err
	}
	category, err := models.ParseCategory(f.Category)
	if err != nil {
		return models.Task{}, err
	}
	energy, err := models.ParseEnergyLevel(f.Energy)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(f.Title),
		DueDate:      strings.TrimSpace(f.Due),
		EstimatedMin: minutes,
		Priority:     priority,
		Category:     category,
		Energy:       energy,
		CreatedAt:    now,
	}
	return task, task.Validate()
}
