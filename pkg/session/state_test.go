package session

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateJSONRoundTrip(t *testing.T) {
	id := uuid.New()
	st := &State{
		CandidateID:    "cand-1",
		Funnel:         "phone",
		Name:           "John Smith",
		SelectedJob:    "Go Developer",
		OfferedJobs:    []string{"Go Developer", "React Developer"},
		InterviewID:    &id,
		FirstAttemptID: &id,
		Buffered:       []Turn{{UserText: "hi", BotText: "hello", Provider: "custom"}},
	}

	b, err := json.Marshal(st)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, st.Funnel, back.Funnel)
	assert.Equal(t, st.OfferedJobs, back.OfferedJobs)
	require.NotNil(t, back.InterviewID)
	assert.Equal(t, id, *back.InterviewID)
	assert.Len(t, back.Buffered, 1)
}

func TestResetKeepsTranscriptAndProfileFields(t *testing.T) {
	id := uuid.New()
	st := &State{
		Name:                 "John Smith",
		Phone:                "9876543210",
		Funnel:               "email",
		SelectedJob:          "Go Developer",
		InterviewID:          &id,
		FirstAttemptID:       &id,
		AwaitingSubmitChoice: true,
		DocumentRetries:      2,
		Buffered:             []Turn{{UserText: "hi"}},
	}

	st.Reset()
	assert.Equal(t, FunnelNone, st.Funnel)
	assert.Empty(t, st.SelectedJob)
	assert.Nil(t, st.InterviewID)
	assert.Nil(t, st.FirstAttemptID)
	assert.False(t, st.AwaitingSubmitChoice)
	assert.Zero(t, st.DocumentRetries)

	assert.Equal(t, "John Smith", st.Name)
	assert.Len(t, st.Buffered, 1)
}

func TestIdentityResolvable(t *testing.T) {
	assert.False(t, (&State{}).IdentityResolvable())
	assert.False(t, (&State{Name: "John"}).IdentityResolvable())
	assert.False(t, (&State{Phone: "9876543210"}).IdentityResolvable())
	assert.True(t, (&State{Name: "John", Phone: "9876543210"}).IdentityResolvable())
	assert.True(t, (&State{Name: "John", Email: "j@x.com"}).IdentityResolvable())
}

func TestSetFieldIgnoresUnknown(t *testing.T) {
	st := &State{}
	st.SetField("name", "John")
	st.SetField("employment_status", "Employed")
	st.SetField("shoe_size", "42")
	assert.Equal(t, "John", st.Name)
	assert.Equal(t, "Employed", st.EmploymentStatus)
}
