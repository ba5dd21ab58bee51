package rowmap

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	assert.Equal(t,
		[]string{"ReminderId", "reminderId", "reminder_id", "reminderid"},
		Variants("ReminderId"))
	assert.Equal(t,
		[]string{"ClientFullName", "clientFullName", "client_full_name", "clientfullname", "client_name"},
		Variants("ClientFullName", "client_name"))
	assert.Equal(t,
		[]string{"HTTPStatus", "hTTPStatus", "http_status", "httpstatus"},
		Variants("HTTPStatus"))
}

var testAliases = Aliases{
	"Id":       Variants("Id", "reminder_id"),
	"IsActive": Variants("IsActive"),
	"Title":    Variants("Title"),
	"Amount":   Variants("Amount"),
}

func TestReader_FirstPresentAliasWins(t *testing.T) {
	r := NewReader(Row{"reminder_id": "b", "id": "c"}, testAliases)
	assert.Equal(t, "c", r.String("Id"), "lowercase variant precedes the extra alias")

	r = NewReader(Row{"reminder_id": "b"}, testAliases)
	assert.Equal(t, "b", r.String("Id"))
}

func TestReader_NullMatchStopsLookup(t *testing.T) {
	r := NewReader(Row{"Title": nil, "title": "ignored"}, testAliases)

	v, ok := r.Lookup("Title")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, r.StringPtr("Title"))
	assert.False(t, r.Has("Title"))
}

func TestReader_MissingFieldsDoNotPanic(t *testing.T) {
	r := NewReader(Row{}, testAliases)

	assert.Equal(t, "", r.String("Title"))
	assert.Nil(t, r.StringPtr("Title"))
	assert.True(t, r.Bool("IsActive", true))
	assert.False(t, r.Bool("IsActive", false))
	assert.Equal(t, int64(0), r.Int("Amount"))
	assert.True(t, r.Decimal("Amount").IsZero())
	assert.Nil(t, r.Time("Title"))
	assert.Equal(t, "", r.Date("Title"))
	assert.Nil(t, r.DateTimePtr("Title"))
	assert.Equal(t, "", r.String("NotInTable"))
}

func TestReader_Conversions(t *testing.T) {
	id := uuid.New()
	r := NewReader(Row{
		"id":        [16]byte(id),
		"is_active": int32(0),
		"amount":    pgtype.Numeric{Int: big.NewInt(125050), Exp: -2, Valid: true},
		"title":     []byte("Renewal"),
	}, testAliases)

	assert.Equal(t, id.String(), r.String("Id"))
	assert.False(t, r.Bool("IsActive", true))
	assert.Equal(t, "1250.5", r.Decimal("Amount").String())
	assert.Equal(t, int64(1250), r.Int("Amount"))
	assert.Equal(t, "Renewal", r.String("Title"))
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
		ok   bool
	}{
		{true, true, true},
		{"true", true, true},
		{"0", false, true},
		{int64(1), true, true},
		{pgtype.Bool{Bool: true, Valid: true}, true, true},
		{"maybe", false, false},
		{struct{}{}, false, false},
	}
	for _, tt := range tests {
		got, ok := ToBool(tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}

func TestReader_TemporalFields(t *testing.T) {
	aliases := Aliases{
		"Date":    Variants("ReminderDate"),
		"Time":    Variants("ReminderTime"),
		"Created": Variants("CreatedDate"),
	}
	created := time.Date(2024, 4, 2, 9, 15, 0, 0, time.UTC)
	r := NewReader(Row{
		"reminder_date": time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		"reminder_time": pgtype.Time{Microseconds: int64(10*3600) * 1_000_000, Valid: true},
		"created_date":  created,
	}, aliases)

	assert.Equal(t, "2024-04-03", r.Date("Date"))
	tm := r.Time("Time")
	require.NotNil(t, tm)
	assert.Equal(t, "10:00:00", *tm)
	assert.Equal(t, "2024-04-02T09:15:00.000Z", r.DateTime("Created"))
}
