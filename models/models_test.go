package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleResultClone(t *testing.T) {
	round := 1
	sessionID := 7
	r := &ScheduleResult{
		ReviewPeriodID: 5,
		ScheduledSessions: []ScheduledSession{{
			SessionID:      7,
			CouncilMembers: []CouncilMember{{LecturerID: 2, InheritedFromRound: &round}},
		}},
		Warnings:  []ScheduleWarning{{Type: "CouncilNearCapacity", SessionID: &sessionID}},
		Errors:    []string{},
		IsSuccess: true,
	}

	c := r.Clone()
	require.Equal(t, r, c)

	*c.ScheduledSessions[0].CouncilMembers[0].InheritedFromRound = 2
	*c.Warnings[0].SessionID = 8
	c.ScheduledSessions[0].CouncilMembers[0].LecturerID = 3

	assert.Equal(t, 1, round)
	assert.Equal(t, 7, sessionID)
	assert.Equal(t, 2, r.ScheduledSessions[0].CouncilMembers[0].LecturerID)
	assert.Nil(t, (*ScheduleResult)(nil).Clone())
}

func TestEnvelope(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"data":null,"isSuccess":false,"statusCode":400,"message":"Validation failed","errors":["Reason is required"]}`), &env))
	assert.False(t, env.HasData())
	assert.Error(t, env.Decode(&struct{}{}))
	assert.Equal(t, []string{"Reason is required"}, env.Errors)

	require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":3,"role":"Student"},"isSuccess":true}`), &env))
	var user Identity
	require.NoError(t, env.Decode(&user))
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, RoleStudent, user.Role)

	assert.False(t, (*Envelope)(nil).HasData())
}

func TestCredentialValid(t *testing.T) {
	user := Identity{ID: 1, Email: "a@example.com", Role: RoleAdmin}
	assert.True(t, Credential{Token: "t", User: user}.Valid())
	assert.False(t, Credential{Token: "t"}.Valid())
	assert.False(t, Credential{User: user}.Valid())
}
