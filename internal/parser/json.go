package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// User is one entry of the "usuarios" array.
type User struct {
	ID         int
	Name       string
	Email      string
	Active     bool
	LastAccess string // optional ISO timestamp, empty when absent
}

// Session is one entry of the "sesiones" array. DurationSeconds is a pointer
// because the average-duration metric drops missing values rather than
// counting them as zero.
type Session struct {
	UserID          int
	Start           string // optional ISO timestamp
	DurationSeconds *float64
	PagesVisited    int
	Actions         []string
}

// UserData is the parsed payload of a users/sessions document.
type UserData struct {
	Users    []User
	Sessions []Session
}

// ParseJSON reads a users/sessions document. Record-level validation
// failures aggregate into a single error enumerating each bad index.
func ParseJSON(path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file %s: %w", path, err))
	}

	var root map[string]any
	if err := json.Unmarshal(content, &root); err != nil {
		return Fail(fmt.Errorf("invalid JSON: %v", err))
	}

	rawUsers, ok := root["usuarios"].([]any)
	if !ok {
		return Fail(fmt.Errorf("invalid JSON structure: missing or non-array field \"usuarios\""))
	}
	rawSessions, ok := root["sesiones"].([]any)
	if !ok {
		return Fail(fmt.Errorf("invalid JSON structure: missing or non-array field \"sesiones\""))
	}

	var reasons []string
	data := UserData{
		Users:    make([]User, 0, len(rawUsers)),
		Sessions: make([]Session, 0, len(rawSessions)),
	}

	for i, raw := range rawUsers {
		user, errs := parseUser(raw)
		if len(errs) > 0 {
			for _, e := range errs {
				reasons = append(reasons, fmt.Sprintf("usuarios[%d]: %s", i, e))
			}
			continue
		}
		data.Users = append(data.Users, user)
	}

	for i, raw := range rawSessions {
		session, errs := parseSession(raw)
		if len(errs) > 0 {
			for _, e := range errs {
				reasons = append(reasons, fmt.Sprintf("sesiones[%d]: %s", i, e))
			}
			continue
		}
		data.Sessions = append(data.Sessions, session)
	}

	if len(reasons) > 0 {
		return Fail(fmt.Errorf("JSON validation failed: %s", strings.Join(reasons, "; ")))
	}
	return OK(data)
}

func parseUser(raw any) (User, []string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return User{}, []string{"not an object"}
	}

	var errs []string
	var user User

	if id, ok := intField(obj, "id"); ok {
		user.ID = id
	} else {
		errs = append(errs, "missing or invalid integer field \"id\"")
	}
	if name, ok := obj["nombre"].(string); ok {
		user.Name = name
	} else {
		errs = append(errs, "missing or invalid string field \"nombre\"")
	}
	if email, ok := obj["email"].(string); ok {
		user.Email = email
	} else {
		errs = append(errs, "missing or invalid string field \"email\"")
	}
	if active, ok := obj["activo"].(bool); ok {
		user.Active = active
	} else {
		errs = append(errs, "missing or invalid boolean field \"activo\"")
	}
	if last, ok := obj["ultimo_acceso"].(string); ok {
		user.LastAccess = last
	}

	return user, errs
}

func parseSession(raw any) (Session, []string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Session{}, []string{"not an object"}
	}

	var errs []string
	var session Session

	if id, ok := intField(obj, "usuario_id"); ok {
		session.UserID = id
	} else {
		errs = append(errs, "missing or invalid integer field \"usuario_id\"")
	}
	if start, ok := obj["inicio"].(string); ok {
		session.Start = start
	}
	if dur, ok := obj["duracion_segundos"].(float64); ok {
		session.DurationSeconds = &dur
	}
	if pages, ok := intField(obj, "paginas_visitadas"); ok {
		session.PagesVisited = pages
	}

	// acciones is coerced: absent or non-list becomes an empty list, and
	// non-string elements are dropped.
	session.Actions = []string{}
	if actions, ok := obj["acciones"].([]any); ok {
		for _, a := range actions {
			if s, ok := a.(string); ok {
				session.Actions = append(session.Actions, s)
			}
		}
	}

	return session, errs
}

// intField reads an integral JSON number. encoding/json decodes all numbers
// as float64, so integrality is checked explicitly.
func intField(obj map[string]any, key string) (int, bool) {
	v, ok := obj[key].(float64)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
