package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fjurado/filerep/internal/parser"
)

// ComputeJSON summarizes a users/sessions document.
func ComputeJSON(data parser.UserData) (map[string]any, error) {
	if len(data.Users) == 0 && len(data.Sessions) == 0 {
		return nil, fmt.Errorf("no users or sessions to analyze")
	}

	active := 0
	for _, u := range data.Users {
		if u.Active {
			active++
		}
	}
	activePct := 0.0
	if len(data.Users) > 0 {
		activePct = round1(float64(active) / float64(len(data.Users)) * 100)
	}

	var durationSum float64
	durationCount := 0
	totalPages := 0
	actionCounts := map[string]int{}
	actionOrder := map[string]int{}
	hourCounts := map[int]int{}
	order := 0

	for _, s := range data.Sessions {
		if s.DurationSeconds != nil {
			durationSum += *s.DurationSeconds
			durationCount++
		}
		totalPages += s.PagesVisited
		for _, a := range s.Actions {
			if _, seen := actionOrder[a]; !seen {
				actionOrder[a] = order
				order++
			}
			actionCounts[a]++
		}
		if hour, ok := sessionHour(s.Start); ok {
			hourCounts[hour]++
		}
	}

	avgDuration := 0
	if durationCount > 0 {
		avgDuration = int(durationSum / float64(durationCount))
	}

	topActions := make([]map[string]any, 0, 5)
	for _, entry := range topN(actionCounts, actionOrder, 5) {
		topActions = append(topActions, map[string]any{
			"action": entry.key,
			"count":  entry.count,
		})
	}

	peakHour, peakCount := 0, 0
	for hour := 0; hour < 24; hour++ {
		if c := hourCounts[hour]; c > peakCount {
			peakHour, peakCount = hour, c
		}
	}

	return map[string]any{
		"total_users":          len(data.Users),
		"active_users":         active,
		"inactive_users":       len(data.Users) - active,
		"active_percentage":    activePct,
		"total_sessions":       len(data.Sessions),
		"avg_session_duration": avgDuration,
		"total_pages_visited":  totalPages,
		"top_actions":          topActions,
		"peak_hour": map[string]any{
			"hour":          peakHour,
			"session_count": peakCount,
		},
	}, nil
}

// sessionHour extracts the HH component of an ISO timestamp like
// "2025-03-04T14:30:00" or "2025-03-04 14:30:00".
func sessionHour(start string) (int, bool) {
	if len(start) < 13 {
		return 0, false
	}
	if _, err := time.Parse("2006-01-02", start[:10]); err != nil {
		return 0, false
	}
	if start[10] != 'T' && start[10] != ' ' {
		return 0, false
	}
	hour, err := strconv.Atoi(start[11:13])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}
