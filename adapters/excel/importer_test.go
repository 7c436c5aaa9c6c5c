package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"burnoutd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// recordingQueue captures enqueued logs.
type recordingQueue struct {
	logs []*models.DailyLog
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, log *models.DailyLog) (*models.DailyLog, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.logs = append(q.logs, log)
	return log, nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSV(t *testing.T) {
	path := writeCSV(t, `Employee_ID,Log_Date,Hours_Worked,Hours_Slept,Stress_Level,Overtime_Hours
1,2026-04-01,9.5,6,7,1.5
2,2026-04-01,8,,5,
`)
	queue := &recordingQueue{}
	result, err := NewImporter(queue, zap.NewNop()).Import(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)
	require.Len(t, queue.logs, 2)

	first := queue.logs[0]
	assert.Equal(t, int64(1), first.EmployeeID)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), first.LogDate)
	require.NotNil(t, first.HoursWorked)
	assert.Equal(t, 9.5, *first.HoursWorked)
	require.NotNil(t, first.StressLevel)
	assert.Equal(t, 7, *first.StressLevel)

	// Empty cells stay unset rather than defaulting.
	second := queue.logs[1]
	assert.Nil(t, second.HoursSlept)
	assert.Nil(t, second.OvertimeHours)
}

func TestImportCollectsRowErrors(t *testing.T) {
	path := writeCSV(t, `employee_id,log_date,hours_worked
1,2026-04-01,8
,2026-04-02,8
2,not-a-date,8
3,2026-04-03,lots
4,2026-04-04,7.5
`)
	queue := &recordingQueue{}
	result, err := NewImporter(queue, zap.NewNop()).Import(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	// Row numbers are 1-based file lines including the header.
	assert.Contains(t, result.Errors[0], "row 3")
}

func TestImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"employee_id", "log_date", "hours_worked"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1, "2026-04-01", 9.0}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2, "2026-04-02", 7.5}))

	path := filepath.Join(t.TempDir(), "logs.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	queue := &recordingQueue{}
	result, err := NewImporter(queue, zap.NewNop()).Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, queue.logs, 2)
	assert.Equal(t, int64(2), queue.logs[1].EmployeeID)
}

func TestImportRejectsHeaderOnlyFile(t *testing.T) {
	path := writeCSV(t, "employee_id,log_date\n")
	_, err := NewImporter(&recordingQueue{}, zap.NewNop()).Import(context.Background(), path)
	assert.Error(t, err)
}
