package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigia/folga-engine/ledger"
)

func projRecord(id string, status ledger.Status, serviceDate, dateUsed ledger.Date) ledger.LeaveRecord {
	return ledger.LeaveRecord{
		ID:          ledger.RecordID(id),
		OfficerID:   "o-1",
		ServiceType: ledger.ServiceOutros,
		ServiceDate: serviceDate,
		Amount:      ledger.Days(1),
		Status:      status,
		DateUsed:    dateUsed,
	}
}

func projIDs(records []ledger.LeaveRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = string(r.ID)
	}
	return ids
}

func TestProject_FilterByStatus(t *testing.T) {
	records := []ledger.LeaveRecord{
		projRecord("a", ledger.StatusAvailable, ledger.NewDate(2024, time.January, 10), ledger.Date{}),
		projRecord("u", ledger.StatusUsed, ledger.NewDate(2024, time.February, 15), ledger.NewDate(2024, time.March, 1)),
		projRecord("x", ledger.StatusExpired, ledger.NewDate(2023, time.May, 1), ledger.Date{}),
	}

	all := ledger.Project(records, ledger.FilterAll, ledger.SortServiceDateAsc)
	assert.Len(t, all, 3)

	available := ledger.Project(records, ledger.FilterAvailable, ledger.SortServiceDateAsc)
	assert.Equal(t, []string{"a"}, projIDs(available))

	used := ledger.Project(records, ledger.FilterUsed, ledger.SortServiceDateAsc)
	assert.Equal(t, []string{"u"}, projIDs(used))

	expired := ledger.Project(records, ledger.FilterExpired, ledger.SortServiceDateAsc)
	assert.Equal(t, []string{"x"}, projIDs(expired))
}

func TestProject_SortByServiceDate(t *testing.T) {
	records := []ledger.LeaveRecord{
		projRecord("jan", ledger.StatusAvailable, ledger.NewDate(2024, time.January, 10), ledger.Date{}),
		projRecord("mar", ledger.StatusAvailable, ledger.NewDate(2024, time.March, 1), ledger.Date{}),
		projRecord("feb", ledger.StatusAvailable, ledger.NewDate(2024, time.February, 15), ledger.Date{}),
	}

	desc := ledger.Project(records, ledger.FilterAll, ledger.SortServiceDateDesc)
	assert.Equal(t, []string{"mar", "feb", "jan"}, projIDs(desc))

	asc := ledger.Project(records, ledger.FilterAll, ledger.SortServiceDateAsc)
	assert.Equal(t, []string{"jan", "feb", "mar"}, projIDs(asc))
}

func TestProject_SortByDateUsed_UnusedSortLast(t *testing.T) {
	// Records without a usage date go after every record that has one,
	// keeping their relative input order.
	records := []ledger.LeaveRecord{
		projRecord("open1", ledger.StatusAvailable, ledger.NewDate(2024, time.January, 1), ledger.Date{}),
		projRecord("early", ledger.StatusUsed, ledger.NewDate(2024, time.January, 2), ledger.NewDate(2024, time.February, 1)),
		projRecord("open2", ledger.StatusAvailable, ledger.NewDate(2024, time.January, 3), ledger.Date{}),
		projRecord("late", ledger.StatusUsed, ledger.NewDate(2024, time.January, 4), ledger.NewDate(2024, time.April, 1)),
	}

	got := ledger.Project(records, ledger.FilterAll, ledger.SortDateUsedDesc)
	assert.Equal(t, []string{"late", "early", "open1", "open2"}, projIDs(got))
}

func TestProject_InputUntouched(t *testing.T) {
	records := []ledger.LeaveRecord{
		projRecord("b", ledger.StatusAvailable, ledger.NewDate(2024, time.March, 1), ledger.Date{}),
		projRecord("a", ledger.StatusAvailable, ledger.NewDate(2024, time.January, 10), ledger.Date{}),
	}

	out := ledger.Project(records, ledger.FilterAll, ledger.SortServiceDateAsc)
	require.Equal(t, []string{"a", "b"}, projIDs(out))
	assert.Equal(t, []string{"b", "a"}, projIDs(records), "caller's slice keeps its order")
}

func TestStatusFilterAndSortKeyValidation(t *testing.T) {
	assert.True(t, ledger.FilterAll.Valid())
	assert.True(t, ledger.FilterExpired.Valid())
	assert.False(t, ledger.StatusFilter("PENDING").Valid())

	assert.True(t, ledger.SortDateUsedDesc.Valid())
	assert.False(t, ledger.SortKey("AMOUNT_DESC").Valid())
}
