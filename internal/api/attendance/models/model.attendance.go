// Package models - CheckIn và Break thuộc domain chấm công (crm_checkins, crm_breaks).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckIn là bản ghi chấm công của một user trong một ngày (crm_checkins)
type CheckIn struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	UserName   string `json:"userName" bson:"userName" index:"compound:crm_checkin_user_day_unique"`
	Day        string `json:"day" bson:"day" index:"compound:crm_checkin_user_day_unique"` // YYYY-MM-DD
	CheckInAt  int64  `json:"checkInAt" bson:"checkInAt"`
	CheckOutAt int64  `json:"checkOutAt,omitempty" bson:"checkOutAt,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// Break là một lần nghỉ (crm_breaks). EndedAt = 0 khi đang nghỉ.
type Break struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	UserName  string `json:"userName" bson:"userName" index:"single:1,compound:crm_break_user_started"`
	Reason    string `json:"reason,omitempty" bson:"reason,omitempty"`
	StartedAt int64  `json:"startedAt" bson:"startedAt" index:"compound:crm_break_user_started"`
	EndedAt   int64  `json:"endedAt,omitempty" bson:"endedAt,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
