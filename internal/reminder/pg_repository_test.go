package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

type procCall struct {
	name string
	args []any
}

// recordingProcs captures every stored-procedure call and answers with canned rows.
type recordingProcs struct {
	calls []procCall
	rows  map[string][]rowmap.Row
}

func (p *recordingProcs) Call(_ context.Context, name string, args ...any) ([]rowmap.Row, error) {
	p.calls = append(p.calls, procCall{name: name, args: args})
	return p.rows[name], nil
}

func (p *recordingProcs) last() procCall {
	return p.calls[len(p.calls)-1]
}

func TestPgRepository_ListFilteredArgOrder(t *testing.T) {
	procs := &recordingProcs{}
	repo := NewPgRepository(procs)
	agent, client := uuid.New(), uuid.New()

	_, err := repo.ListFiltered(context.Background(), agent, Filter{
		Type:       TypeCall,
		Priority:   PriorityHigh,
		ClientID:   &client,
		StartDate:  "2025-03-01",
		PageNumber: 2,
		PageSize:   10,
	})
	require.NoError(t, err)

	c := procs.last()
	assert.Equal(t, "sp_get_reminders_filtered", c.name)
	require.Len(t, c.args, 9)
	assert.Equal(t, agent, c.args[0])
	assert.Equal(t, "Call", c.args[1])
	assert.Nil(t, c.args[2], "unset status is NULL")
	assert.Equal(t, "High", c.args[3])
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), c.args[4])
	assert.Nil(t, c.args[5])
	assert.Equal(t, client, c.args[6])
	assert.Equal(t, 2, c.args[7])
	assert.Equal(t, 10, c.args[8])
}

func TestPgRepository_ListUnfiltered(t *testing.T) {
	procs := &recordingProcs{}
	agent := uuid.New()

	_, err := NewPgRepository(procs).ListUnfiltered(context.Background(), agent, Filter{PageNumber: 1, PageSize: 20})
	require.NoError(t, err)

	c := procs.last()
	assert.Equal(t, "sp_get_reminders", c.name)
	assert.Equal(t, []any{agent, nil, nil, 1, 20}, c.args)
}

func TestPgRepository_Counts(t *testing.T) {
	procs := &recordingProcs{rows: map[string][]rowmap.Row{
		"sp_count_agent_reminders":     {{"count": int64(20)}},
		"sp_count_expiring_policies":   {{"count": int32(10)}},
		"sp_count_birthdays_on":        {{"total": int64(5)}},
		"sp_count_active_appointments": nil,
	}}
	repo := NewPgRepository(procs)
	ctx := context.Background()
	agent := uuid.New()

	n, err := repo.CountAgentReminders(ctx, agent)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)

	n, err = repo.CountExpiringPolicies(ctx, agent, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, []any{agent, 30}, procs.last().args)

	n, err = repo.CountBirthdaysOn(ctx, agent, []MonthDay{{Month: 2, Day: 28}, {Month: 2, Day: 29}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, []any{agent, []int32{2, 2}, []int32{28, 29}}, procs.last().args)

	n, err = repo.CountActiveAppointments(ctx, agent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPgRepository_GetByIDMissing(t *testing.T) {
	_, err := NewPgRepository(&recordingProcs{}).GetByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPgRepository_CreateDecodesMutation(t *testing.T) {
	procs := &recordingProcs{rows: map[string][]rowmap.Row{
		"sp_create_reminder": {{"success": true, "message": "ok", "reminder_id": "r-7"}},
	}}
	tm := "10:00:00"

	res, err := NewPgRepository(procs).Create(context.Background(), uuid.New(), Draft{
		Type:     TypeBirthday,
		Title:    "Card",
		Date:     "2025-03-01",
		Time:     &tm,
		Priority: PriorityLow,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "r-7", res.ID)
	assert.Equal(t, int64(1), res.RowsAffected)

	c := procs.last()
	assert.Equal(t, "sp_create_reminder", c.name)
	assert.Len(t, c.args, 17)
	assert.Equal(t, "Birthday", c.args[3])
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), c.args[6])
	assert.Equal(t, &tm, c.args[7])
}

func TestPgRepository_UpdatePassesNilForUnchanged(t *testing.T) {
	procs := &recordingProcs{}
	title := "New"

	_, err := NewPgRepository(procs).Update(context.Background(), uuid.New(), uuid.New(), Patch{Title: &title})
	require.NoError(t, err)

	c := procs.last()
	assert.Equal(t, "sp_update_reminder", c.name)
	assert.Nil(t, c.args[2].(*string), "type unchanged")
	assert.Equal(t, &title, c.args[3])
	assert.Nil(t, c.args[5], "date unchanged")
}

func TestPgRepository_BadDatePassesThroughRaw(t *testing.T) {
	procs := &recordingProcs{}

	_, err := NewPgRepository(procs).ListForDate(context.Background(), uuid.New(), "2025-13-40")
	require.NoError(t, err)
	assert.Equal(t, "2025-13-40", procs.last().args[1])
}

func TestPgRepository_UpsertSettingsRequiresRow(t *testing.T) {
	_, err := NewPgRepository(&recordingProcs{}).UpsertSettings(context.Background(), uuid.New(), SettingsDraft{Type: TypeCall})
	assert.Error(t, err)
}
