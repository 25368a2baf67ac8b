package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type ScreenerStatus string

const (
	ScreenerStatusDraft     ScreenerStatus = "draft"
	ScreenerStatusPublished ScreenerStatus = "published"
)

type ScreenerFieldType string

const (
	FieldTypeText    ScreenerFieldType = "text"
	FieldTypeNumber  ScreenerFieldType = "number"
	FieldTypeSelect  ScreenerFieldType = "select"
	FieldTypeBoolean ScreenerFieldType = "boolean"
	FieldTypeDate    ScreenerFieldType = "date"
)

func ValidScreenerFieldType(t ScreenerFieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeSelect, FieldTypeBoolean, FieldTypeDate:
		return true
	}
	return false
}

// ScreenerField is a single question definition on a screener form.
type ScreenerField struct {
	Name     string            `json:"name"`
	Label    string            `json:"label"`
	Type     ScreenerFieldType `json:"type"`
	Required bool              `json:"required"`
	Options  []string          `json:"options,omitempty"`
	Min      *float64          `json:"min,omitempty"`
	Max      *float64          `json:"max,omitempty"`
	Category string            `json:"category,omitempty"`
}

// ScreenerFields is stored as a JSONB column.
type ScreenerFields []ScreenerField

func (f ScreenerFields) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *ScreenerFields) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		*f = nil
		return nil
	}
	return fmt.Errorf("unsupported scan type for ScreenerFields: %T", src)
}

// UUIDList is stored as a JSONB column.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *UUIDList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("unsupported scan type for UUIDList: %T", src)
}

// ScreenerForm is a named, versioned questionnaire used to qualify leads.
type ScreenerForm struct {
	Base
	Name             string         `db:"name" json:"name"`
	Version          int            `db:"version" json:"version"`
	Status           ScreenerStatus `db:"status" json:"status"`
	Fields           ScreenerFields `db:"fields" json:"fields"`
	AssignedPartners UUIDList       `db:"assigned_partners" json:"assigned_partners"`
	CreatedBy        uuid.UUID      `db:"created_by" json:"created_by"`
}

type CreateScreenerRequest struct {
	Name   string          `json:"name" binding:"required"`
	Fields []ScreenerField `json:"fields"`
}

type UpdateScreenerRequest struct {
	Name             *string         `json:"name"`
	Fields           []ScreenerField `json:"fields"`
	AssignedPartners []string        `json:"assigned_partners" binding:"omitempty,dive,uuid"`
}

type GenerateScreenerRequest struct {
	ProtocolText string `json:"protocol_text" binding:"required"`
}
