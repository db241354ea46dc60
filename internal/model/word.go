package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Word is one vocabulary entry. Name is the natural key; a row is never
// hard-deleted, IsDeleted marks a tombstone that still syncs to clients.
type Word struct {
	Name         string  `gorm:"primaryKey;size:255" json:"name"`
	MeaningKr    string  `gorm:"type:text;not null" json:"meaningKr"`
	Example      string  `gorm:"type:text;not null" json:"example"`
	AntonymEn    string  `gorm:"type:text;not null" json:"antonymEn"`
	Tags         *string `gorm:"type:text" json:"tags"`
	CreatedTime  *string `gorm:"size:64" json:"createdTime"`
	ModifiedTime string  `gorm:"size:64;not null;index" json:"modifiedTime"`
	IsDeleted    bool    `gorm:"not null" json:"isDeleted"`
	SyncedTime   *string `gorm:"size:64" json:"syncedTime"`
	Note         *string `gorm:"type:text" json:"note"`
}

func (Word) TableName() string {
	return "words"
}

// WordPayload is a Word as it arrives from a client. The textual fields are
// pointers so that an absent field can be told apart from an empty one.
type WordPayload struct {
	Name         string  `json:"name"`
	MeaningKr    *string `json:"meaningKr"`
	Example      *string `json:"example"`
	AntonymEn    *string `json:"antonymEn"`
	Tags         *string `json:"tags"`
	CreatedTime  *string `json:"createdTime"`
	ModifiedTime string  `json:"modifiedTime"`
	IsDeleted    bool    `json:"isDeleted"`
	SyncedTime   *string `json:"syncedTime"`
	Note         *string `json:"note"`
}

// Validate checks that every required field is present. Empty definition
// text is allowed, a missing one is not.
func (p WordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.MeaningKr, validation.NotNil),
		validation.Field(&p.Example, validation.NotNil),
		validation.Field(&p.AntonymEn, validation.NotNil),
		validation.Field(&p.ModifiedTime, validation.Required, validation.Length(1, 64)),
	)
}

// Word converts a validated payload into a storable record. SyncedTime is
// always taken from ModifiedTime: a row is reconciled as of the write that
// produced it.
func (p WordPayload) Word() Word {
	w := Word{
		Name:         p.Name,
		Tags:         p.Tags,
		CreatedTime:  p.CreatedTime,
		ModifiedTime: p.ModifiedTime,
		IsDeleted:    p.IsDeleted,
		Note:         p.Note,
	}
	if p.MeaningKr != nil {
		w.MeaningKr = *p.MeaningKr
	}
	if p.Example != nil {
		w.Example = *p.Example
	}
	if p.AntonymEn != nil {
		w.AntonymEn = *p.AntonymEn
	}
	synced := p.ModifiedTime
	w.SyncedTime = &synced
	return w
}

// Payload is the inverse of WordPayload.Word, used when records are
// re-imported from an export.
func (w Word) Payload() WordPayload {
	meaning, example, antonym := w.MeaningKr, w.Example, w.AntonymEn
	return WordPayload{
		Name:         w.Name,
		MeaningKr:    &meaning,
		Example:      &example,
		AntonymEn:    &antonym,
		Tags:         w.Tags,
		CreatedTime:  w.CreatedTime,
		ModifiedTime: w.ModifiedTime,
		IsDeleted:    w.IsDeleted,
		SyncedTime:   w.SyncedTime,
		Note:         w.Note,
	}
}
