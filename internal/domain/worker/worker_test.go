package worker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificationValidThrough(t *testing.T) {
	expiry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cert := Certification{ExpiresAt: expiry}

	assert.True(t, cert.ValidThrough(expiry.Add(-24*time.Hour)))
	assert.True(t, cert.ValidThrough(expiry), "expiry moment itself is still valid")
	assert.False(t, cert.ValidThrough(expiry.Add(time.Second)))
}

func TestCertificationFor(t *testing.T) {
	certID := uuid.New()
	otherID := uuid.New()
	w := NewWorker("Dana Reyes", "dana@catering.test", nil)

	t.Run("no certifications", func(t *testing.T) {
		assert.Nil(t, w.CertificationFor(certID))
	})

	t.Run("only other kinds", func(t *testing.T) {
		w.Certifications = []Certification{
			{CertID: otherID, ExpiresAt: time.Now().Add(time.Hour)},
		}
		assert.Nil(t, w.CertificationFor(certID))
	})

	t.Run("picks latest expiry among renewals", func(t *testing.T) {
		early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		late := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		w.Certifications = []Certification{
			{CertID: certID, ExpiresAt: early},
			{CertID: certID, ExpiresAt: late},
			{CertID: otherID, ExpiresAt: late.Add(time.Hour)},
		}

		got := w.CertificationFor(certID)
		require.NotNil(t, got)
		assert.Equal(t, late, got.ExpiresAt)
	})
}

func TestNewWorkerIsActive(t *testing.T) {
	w := NewWorker("Dana Reyes", "dana@catering.test", []string{"server", "bartender"})
	assert.True(t, w.Active)
	assert.NoError(t, w.Validate())
}

func TestWorkerValidate(t *testing.T) {
	w := NewWorker("", "dana@catering.test", nil)
	assert.Error(t, w.Validate())

	w = NewWorker("Dana Reyes", "", nil)
	assert.Error(t, w.Validate())
}
