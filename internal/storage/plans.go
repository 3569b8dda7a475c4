package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/termplan/internal/models"
)

// SavePlanRun appends run as a new revision. Stored runs are never rewritten.
func (s *SQLStore) SavePlanRun(run models.PlanRun) (models.PlanRun, error) {
	tx, err := s.begin()
	if err != nil {
		return models.PlanRun{}, err
	}
	defer tx.tx.Rollback()

	var latest int
	if err := tx.queryRow("SELECT COALESCE(MAX(revision), 0) FROM plan_runs").Scan(&latest); err != nil {
		return models.PlanRun{}, fmt.Errorf("reading latest revision: %w", err)
	}
	run.Revision = latest + 1

	if _, err := tx.exec("INSERT INTO plan_runs (revision, today, created_at) VALUES (?, ?, ?)",
		run.Revision, run.Today, run.CreatedAt); err != nil {
		return models.PlanRun{}, fmt.Errorf("saving plan run: %w", err)
	}

	for _, b := range run.Blocks {
		_, err := tx.exec(`
			INSERT INTO plan_blocks (revision, task_id, start_at, end_at, slot_count, score, user_edited)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.Revision, b.TaskID, formatTime(b.Start), formatTime(b.End), b.SlotCount, b.Score, b.UserEdited)
		if err != nil {
			return models.PlanRun{}, fmt.Errorf("saving block %s: %w", b.ID(), err)
		}
	}

	for i, o := range run.Overflow {
		_, err := tx.exec("INSERT INTO plan_overflow (revision, seq, task_id, reason) VALUES (?, ?, ?, ?)",
			run.Revision, i+1, o.TaskID, string(o.Reason))
		if err != nil {
			return models.PlanRun{}, fmt.Errorf("saving overflow for %s: %w", o.TaskID, err)
		}
	}

	for _, e := range run.Log {
		slots := make([]storedSlot, len(e.Slots))
		for i, sr := range e.Slots {
			slots[i] = storedSlot{Start: formatTime(sr.Start), End: formatTime(sr.End)}
		}
		data, err := json.Marshal(slots)
		if err != nil {
			return models.PlanRun{}, err
		}
		_, err = tx.exec(`
			INSERT INTO plan_log (revision, seq, task_id, decision, slots, score, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.Revision, e.Seq, e.TaskID, string(e.Decision), string(data), e.Score, e.Reason)
		if err != nil {
			return models.PlanRun{}, fmt.Errorf("saving log entry %d: %w", e.Seq, err)
		}
	}

	for i, a := range run.Advisories {
		_, err := tx.exec("INSERT INTO plan_advisories (revision, seq, item_id, message) VALUES (?, ?, ?, ?)",
			run.Revision, i+1, a.ItemID, a.Message)
		if err != nil {
			return models.PlanRun{}, fmt.Errorf("saving advisory: %w", err)
		}
	}

	if err := tx.tx.Commit(); err != nil {
		return models.PlanRun{}, err
	}
	return run, nil
}

type storedSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *SQLStore) GetLatestPlanRun() (models.PlanRun, error) {
	var rev int
	err := s.queryRow("SELECT revision FROM plan_runs ORDER BY revision DESC LIMIT 1").Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlanRun{}, notFound("plan run", "latest")
	}
	if err != nil {
		return models.PlanRun{}, err
	}
	return s.GetPlanRun(rev)
}

func (s *SQLStore) GetPlanRun(revision int) (models.PlanRun, error) {
	run := models.PlanRun{Revision: revision}
	err := s.queryRow("SELECT today, created_at FROM plan_runs WHERE revision = ?", revision).
		Scan(&run.Today, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlanRun{}, notFound("plan run", strconv.Itoa(revision))
	}
	if err != nil {
		return models.PlanRun{}, err
	}

	if run.Blocks, err = s.loadBlocks(revision); err != nil {
		return models.PlanRun{}, err
	}
	if run.Overflow, err = s.loadOverflow(revision); err != nil {
		return models.PlanRun{}, err
	}
	if run.Log, err = s.loadLog(revision); err != nil {
		return models.PlanRun{}, err
	}
	if run.Advisories, err = s.loadAdvisories(revision); err != nil {
		return models.PlanRun{}, err
	}
	return run, nil
}

func (s *SQLStore) loadBlocks(revision int) ([]models.ScheduledBlock, error) {
	rows, err := s.query(`
		SELECT task_id, start_at, end_at, slot_count, score, user_edited
		FROM plan_blocks WHERE revision = ? ORDER BY start_at, task_id`, revision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.ScheduledBlock
	for rows.Next() {
		var b models.ScheduledBlock
		var start, end string
		if err := rows.Scan(&b.TaskID, &start, &end, &b.SlotCount, &b.Score, &b.UserEdited); err != nil {
			return nil, err
		}
		if b.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if b.End, err = parseTime(end); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *SQLStore) loadOverflow(revision int) ([]models.OverflowEntry, error) {
	rows, err := s.query("SELECT task_id, reason FROM plan_overflow WHERE revision = ? ORDER BY seq", revision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OverflowEntry
	for rows.Next() {
		var o models.OverflowEntry
		var reason string
		if err := rows.Scan(&o.TaskID, &reason); err != nil {
			return nil, err
		}
		o.Reason = models.OverflowReason(reason)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadLog(revision int) ([]models.LogEntry, error) {
	rows, err := s.query(`
		SELECT seq, task_id, decision, slots, score, reason
		FROM plan_log WHERE revision = ? ORDER BY seq`, revision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var decision, slotsJSON string
		if err := rows.Scan(&e.Seq, &e.TaskID, &decision, &slotsJSON, &e.Score, &e.Reason); err != nil {
			return nil, err
		}
		e.Decision = models.Decision(decision)

		var slots []storedSlot
		if err := json.Unmarshal([]byte(slotsJSON), &slots); err != nil {
			return nil, fmt.Errorf("decoding slots of log entry %d: %w", e.Seq, err)
		}
		for _, sl := range slots {
			start, err := parseTime(sl.Start)
			if err != nil {
				return nil, err
			}
			end, err := parseTime(sl.End)
			if err != nil {
				return nil, err
			}
			e.Slots = append(e.Slots, models.SlotRange{Start: start, End: end})
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadAdvisories(revision int) ([]models.Advisory, error) {
	rows, err := s.query("SELECT item_id, message FROM plan_advisories WHERE revision = ? ORDER BY seq", revision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Advisory
	for rows.Next() {
		var a models.Advisory
		if err := rows.Scan(&a.ItemID, &a.Message); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListPlanRuns returns run summaries, newest first.
func (s *SQLStore) ListPlanRuns() ([]PlanRunSummary, error) {
	rows, err := s.query(`
		SELECT r.revision, r.today, r.created_at,
			(SELECT COUNT(*) FROM plan_blocks b WHERE b.revision = r.revision),
			(SELECT COUNT(*) FROM plan_overflow o WHERE o.revision = r.revision)
		FROM plan_runs r ORDER BY r.revision DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanRunSummary
	for rows.Next() {
		var sum PlanRunSummary
		if err := rows.Scan(&sum.Revision, &sum.Today, &sum.CreatedAt, &sum.Blocks, &sum.Overflow); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
