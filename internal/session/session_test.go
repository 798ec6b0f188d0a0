package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignInNotifiesAndSetsUser(t *testing.T) {
	m := NewManager()
	var events []string
	m.Subscribe(func(userID string, signedIn bool) {
		if signedIn {
			events = append(events, "in:"+userID)
		} else {
			events = append(events, "out:"+userID)
		}
	})

	_, ok := m.CurrentUserID()
	assert.False(t, ok)

	m.SignIn("u1")
	id, ok := m.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
	assert.Equal(t, []string{"in:u1"}, events)
}

func TestRepeatedSignInNotReannounced(t *testing.T) {
	m := NewManager()
	var count int
	m.Subscribe(func(string, bool) { count++ })

	m.SignIn("u1")
	m.SignIn("u1")
	assert.Equal(t, 1, count)

	// A different user is a real change.
	m.SignIn("u2")
	assert.Equal(t, 2, count)
}

func TestSignOutReportsDepartingUser(t *testing.T) {
	m := NewManager()
	var gone string
	m.Subscribe(func(userID string, signedIn bool) {
		if !signedIn {
			gone = userID
		}
	})

	m.SignOut() // no session, no event
	assert.Empty(t, gone)

	m.SignIn("u1")
	m.SignOut()
	assert.Equal(t, "u1", gone)
	_, ok := m.CurrentUserID()
	assert.False(t, ok)
}
