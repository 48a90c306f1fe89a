package client

import (
	"strings"
	"time"

	"swimfit/backend/internal/kv"
)

// Collection holds one document per client.
const Collection = "clients"

// Headers is the column order used when the collection is initialised on a
// spreadsheet backend.
var Headers = []string{
	"id", "name", "email", "phone", "registrationDate", "isActive", "notes",
	"qrData", "qrCode", "packageLimit", "sessionCount",
}

type Client struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	RegistrationDate time.Time `json:"registrationDate"`
	IsActive         bool      `json:"isActive"`
	Notes            string    `json:"notes"`

	// QRData is the scannable payload; QRCode is the rendered image URL.
	QRData string `json:"qrData,omitempty"`
	QRCode string `json:"qrCode,omitempty"`

	// PackageLimit is nil when the client has no package.
	PackageLimit *int `json:"packageLimit,omitempty"`
	SessionCount int  `json:"sessionCount"`
}

func (c Client) document() kv.Document {
	doc := kv.Document{
		"id":               c.ID,
		"name":             c.Name,
		"email":            c.Email,
		"phone":            c.Phone,
		"registrationDate": c.RegistrationDate.UTC(),
		"isActive":         c.IsActive,
		"notes":            c.Notes,
		"sessionCount":     c.SessionCount,
	}
	if c.QRData != "" {
		doc["qrData"] = c.QRData
	}
	if c.QRCode != "" {
		doc["qrCode"] = c.QRCode
	}
	if c.PackageLimit != nil {
		doc["packageLimit"] = *c.PackageLimit
	}
	return doc
}

func fromDocument(doc kv.Document) (Client, error) {
	var c Client
	if err := kv.Decode(doc, &c); err != nil {
		return Client{}, err
	}
	return c, nil
}

type AddClientInput struct {
	Name             string     `json:"name" validate:"required"`
	Email            string     `json:"email" validate:"required"`
	Phone            string     `json:"phone"`
	Notes            string     `json:"notes"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
	PackageLimit     *int       `json:"packageLimit,omitempty" validate:"omitempty,min=1"`
}

func (in *AddClientInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
}

// UpdateClientInput carries only the fields to change.
type UpdateClientInput struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
	PackageLimit *int    `json:"packageLimit,omitempty" validate:"omitempty,min=1"`
	SessionCount *int    `json:"sessionCount,omitempty" validate:"omitempty,min=0"`
}

func (in *UpdateClientInput) Trim() {
	for _, p := range []*string{in.Name, in.Email, in.Phone, in.Notes} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func (in UpdateClientInput) fields() kv.Document {
	doc := kv.Document{}
	if in.Name != nil {
		doc["name"] = *in.Name
	}
	if in.Email != nil {
		doc["email"] = *in.Email
	}
	if in.Phone != nil {
		doc["phone"] = *in.Phone
	}
	if in.Notes != nil {
		doc["notes"] = *in.Notes
	}
	if in.IsActive != nil {
		doc["isActive"] = *in.IsActive
	}
	if in.PackageLimit != nil {
		doc["packageLimit"] = *in.PackageLimit
	}
	if in.SessionCount != nil {
		doc["sessionCount"] = *in.SessionCount
	}
	return doc
}

type ListClientsInput struct {
	Query      string
	ActiveOnly bool
}

// QRStats summarises a backfill run.
type QRStats struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
