//go:build e2e

package availability_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"studio-backend/internal/domain/user"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/usecase/queries"
	"studio-backend/tests/common/authtest"
	"studio-backend/tests/common/dbtest"
	"studio-backend/tests/common/httptest"
	"studio-backend/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AvailabilitySuite struct {
	e2e.SharedSuite
}

func TestAvailabilitySuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AvailabilitySuite))
}

// targetDate returns a date far enough ahead that no slot is in the past.
func targetDate() time.Time {
	return time.Now().AddDate(0, 2, 0)
}

func availabilityURL(d time.Time) string {
	return fmt.Sprintf("/api/availability?year=%d&month=%d", d.Year(), int(d.Month()))
}

func findDay(t *testing.T, grid queries.MonthAvailability, date string) queries.DayAvailability {
	t.Helper()
	for _, day := range grid.Days {
		if day.Date == date {
			return day
		}
	}
	t.Fatalf("day %s not in grid", date)
	return queries.DayAvailability{}
}

func (s *AvailabilitySuite) TestMonthGrid() {
	s.Run("future month starts fully free", func() {
		t := s.T()
		d := targetDate()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, availabilityURL(d), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var grid queries.MonthAvailability
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &grid))

		day := findDay(t, grid, d.Format("2006-01-02"))
		require.Equal(t, queries.DayFree, day.State)
		for _, cell := range day.Slots {
			require.Equal(t, queries.SlotFree, cell.State, cell.Time)
		}
	})

	s.Run("accepted bookings and admin blocks both occupy the grid", func() {
		t := s.T()
		d := targetDate()

		userID := dbtest.CreateTestUser(t, s.DB, "player@example.com", string(user.RoleCustomer))
		start := time.Date(d.Year(), d.Month(), d.Day(), 14, 0, 0, 0, time.Local)
		dbtest.CreateTestBooking(t, s.DB, userID, start, 120, "Ensaio", "accepted")

		adminToken := authtest.CreateAndLogin(t, s.DB, s.Router, "admin@example.com", string(user.RoleAdmin))
		tw := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/schedule/slots/toggle",
			reqdto.ToggleSlotRequest{Date: d.Format("2006-01-02"), Time: "18:00"}, adminToken)
		require.Equal(t, http.StatusOK, tw.Code, tw.Body.String())

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, availabilityURL(d), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var grid queries.MonthAvailability
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &grid))
		day := findDay(t, grid, d.Format("2006-01-02"))

		require.Equal(t, queries.DayPartial, day.State)

		wantStates := map[string]queries.SlotState{
			"14:00": queries.SlotBooked,
			"15:00": queries.SlotBooked,
			"18:00": queries.SlotBlocked,
		}
		gotStates := map[string]queries.SlotState{}
		for _, cell := range day.Slots {
			if _, ok := wantStates[cell.Time]; ok {
				gotStates[cell.Time] = cell.State
			}
		}
		require.Empty(t, cmp.Diff(wantStates, gotStates))
	})

	s.Run("pending bookings do not occupy slots", func() {
		t := s.T()
		d := targetDate()

		userID := dbtest.CreateTestUser(t, s.DB, "pending@example.com", string(user.RoleCustomer))
		start := time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.Local)
		dbtest.CreateTestBooking(t, s.DB, userID, start, 60, "Ensaio", "pending")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, availabilityURL(d), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var grid queries.MonthAvailability
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &grid))
		day := findDay(t, grid, d.Format("2006-01-02"))
		require.Equal(t, queries.DayFree, day.State)
	})

	s.Run("invalid query params", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/availability?year=1990&month=5", nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/availability?year=2026&month=13", nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func (s *AvailabilitySuite) TestToggleDay() {
	s.Run("toggling twice restores the day", func() {
		t := s.T()
		d := targetDate()
		adminToken := authtest.CreateAndLogin(t, s.DB, s.Router, "admin2@example.com", string(user.RoleAdmin))

		body := reqdto.ToggleDayRequest{Date: d.Format("2006-01-02")}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/schedule/days/toggle", body, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		gw := httptest.PerformRequest(t, s.Router, http.MethodGet, availabilityURL(d), nil, "")
		var grid queries.MonthAvailability
		require.NoError(t, httptest.DecodeResponseBody(t, gw.Body, &grid))
		require.Equal(t, queries.DayFull, findDay(t, grid, d.Format("2006-01-02")).State)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/schedule/days/toggle", body, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		gw = httptest.PerformRequest(t, s.Router, http.MethodGet, availabilityURL(d), nil, "")
		require.NoError(t, httptest.DecodeResponseBody(t, gw.Body, &grid))
		require.Equal(t, queries.DayFree, findDay(t, grid, d.Format("2006-01-02")).State)
	})

	s.Run("a day already over cannot be toggled", func() {
		t := s.T()
		adminToken := authtest.CreateAndLogin(t, s.DB, s.Router, "admin3@example.com", string(user.RoleAdmin))

		body := reqdto.ToggleDayRequest{Date: time.Now().AddDate(0, 0, -2).Format("2006-01-02")}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/admin/schedule/days/toggle", body, adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
