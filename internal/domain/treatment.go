package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Treatment represents one assignment episode: a dated bundle of prescribed
// exercises for a given health identifier. Rows are append-only; the "current"
// treatment is always the one with the highest id.
type Treatment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Linkage is by nhs_number, not account id, so history survives any
	// account-id changes.
	NHSNumber string `gorm:"column:nhs_number;type:varchar(20);index;not null" json:"nhsNumber"`

	Timing      string `gorm:"type:varchar(200)" json:"timing"`
	Progression string `gorm:"type:varchar(200)" json:"progression"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Treatment) TableName() string { return "ongoing_treatment" }

// Prescription holds the per-assignment dosage parameters for one exercise.
type Prescription struct {
	Duration int `json:"duration"`
	Reps     int `json:"reps"`
	PerWeek  int `json:"perWeek"`
}

// TreatmentExercise links a Treatment to an Exercise, carrying the display
// order and the prescription payload. Links are created together with their
// Treatment in one transaction and never updated afterwards. The key is
// (treatment_id, order_num): the order position is unique within its own
// treatment, and the same exercise may be prescribed at several positions
// with different dosages.
type TreatmentExercise struct {
	TreatmentID uint `gorm:"primaryKey;autoIncrement:false" json:"treatmentId"`

	// OrderNum is 1-based submission order.
	OrderNum int `gorm:"column:order_num;primaryKey;autoIncrement:false" json:"orderNum"`

	ExerciseID uint `gorm:"index;not null" json:"exerciseId"`

	Prescription datatypes.JSON `gorm:"type:jsonb" json:"prescription"`
}

func (TreatmentExercise) TableName() string { return "treatment_exercise" }

// NewTreatmentExercise builds a link row with the prescription marshalled
// into the JSON column.
func NewTreatmentExercise(treatmentID, exerciseID uint, orderNum int, p Prescription) (TreatmentExercise, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return TreatmentExercise{}, err
	}
	return TreatmentExercise{
		TreatmentID:  treatmentID,
		ExerciseID:   exerciseID,
		OrderNum:     orderNum,
		Prescription: datatypes.JSON(payload),
	}, nil
}

// DecodePrescription unmarshals the JSON payload back into a Prescription.
func (te *TreatmentExercise) DecodePrescription() (Prescription, error) {
	var p Prescription
	err := json.Unmarshal(te.Prescription, &p)
	return p, err
}

// AssignedExercise is the dashboard read model: a catalog exercise together
// with its position and prescription within a treatment.
type AssignedExercise struct {
	Exercise     Exercise     `json:"exercise"`
	OrderNum     int          `json:"orderNum"`
	Prescription Prescription `json:"prescription"`
}
