package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var keyTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "metformin", sanitizeName("Metformin"))
	assert.Equal(t, "co_amoxiclav_625mg", sanitizeName("Co-Amoxiclav 625mg"))
	// truncation to 20 characters
	assert.Equal(t, "hydroxychloroquine_s", sanitizeName("Hydroxychloroquine Sulfate 200mg"))
	assert.Len(t, sanitizeName("a very long medication name indeed"), 20)
}

func TestConsultationKey(t *testing.T) {
	assert.Equal(t, "12345_20250314_092653", consultationKey(12345, keyTime))
}

func TestMedicationKey(t *testing.T) {
	assert.Equal(t, "12345_metformin_500mg_20250314", medicationKey(12345, "Metformin 500mg", keyTime))
	// same name same day derives the same key
	later := keyTime.Add(3 * time.Hour)
	assert.Equal(t,
		medicationKey(12345, "Metformin 500mg", keyTime),
		medicationKey(12345, "metformin 500mg", later))
}

func TestAllergyKeyHasNoDateComponent(t *testing.T) {
	assert.Equal(t, "12345_pollen", allergyKey(12345, "Pollen"))
	assert.Equal(t, "12345_shellfish", allergyKey(12345, "Shellfish"))
}

func TestPreferenceKey(t *testing.T) {
	assert.Equal(t, "12345_scheduling_20250314_092653", preferenceKey(12345, "scheduling", keyTime))
}
