package models

import (
	"testing"

	"consult_crm/internal/common"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVerification_Validate(t *testing.T) {
	client := primitive.NewObjectID()
	item := primitive.NewObjectID()

	ok := Verification{ClientID: client, CommitmentID: &item, Status: "done", Action: ActionStatus}
	assert.NoError(t, ok.Validate())

	both := Verification{ClientID: client, CommitmentID: &item, CriticalHighlightID: &item, Status: "done", Action: ActionStatus}
	assert.ErrorIs(t, both.Validate(), common.ErrInvalidInput)

	none := Verification{ClientID: client, Status: "done", Action: ActionStatus}
	assert.ErrorIs(t, none.Validate(), common.ErrInvalidInput)

	mismatch := Verification{ClientID: client, CriticalHighlightID: &item, Status: "done", Action: ActionStatus}
	assert.ErrorIs(t, mismatch.Validate(), common.ErrInvalidInput)

	highlight := Verification{ClientID: client, CriticalHighlightID: &item, Status: "not catered", Action: ActionAdminCheck}
	assert.NoError(t, highlight.Validate())

	noClient := Verification{CommitmentID: &item, Status: "done", Action: ActionStatus}
	assert.ErrorIs(t, noClient.Validate(), common.ErrRequiredField)
}
