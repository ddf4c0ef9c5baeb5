package sis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status     string
		registered bool
		dropped    bool
	}{
		{status: "RE", registered: true},
		{status: "RW", registered: true},
		{status: "DD", dropped: true},
		{status: "DW", dropped: true},
		{status: "W", dropped: true},
		{status: "IA", dropped: true},
		{status: "P", dropped: true},
		{status: "X"},
		{status: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %q", tt.status), func(t *testing.T) {
			t.Parallel()

			e := Enrollment{RegistrationStatus: tt.status}
			assert.Equal(t, tt.registered, e.IsRegistered())
			assert.Equal(t, tt.dropped, e.IsDropped())
		})
	}
}

func TestPersonRef(t *testing.T) {
	t.Parallel()

	byID := ByID(42)
	id, ok := byID.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	_, ok = byID.ExternalID()
	assert.False(t, ok)
	assert.Equal(t, "id:42", byID.String())

	byExternal := ByExternalID("20123456")
	externalID, ok := byExternal.ExternalID()
	assert.True(t, ok)
	assert.Equal(t, "20123456", externalID)
	_, ok = byExternal.ID()
	assert.False(t, ok)
	assert.Equal(t, "external:20123456", byExternal.String())
}

func TestEventTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "person-sync", EventPersonSync.String())
	assert.Equal(t, "student-enroll", EventStudentEnroll.String())
	assert.Equal(t, "student-drop", EventStudentDrop.String())
	assert.Equal(t, "section-cancel", EventSectionCancel.String())
	assert.Equal(t, "unknown(7)", EventType(7).String())
}

func TestPersonFullName(t *testing.T) {
	t.Parallel()

	p := &Person{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", p.FullName())
}
