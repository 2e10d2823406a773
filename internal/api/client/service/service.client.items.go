package clientsvc

import (
	"context"

	basesvc "consult_crm/internal/api/base/service"
	clientdto "consult_crm/internal/api/client/dto"
	clientmodels "consult_crm/internal/api/client/models"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"
	"consult_crm/internal/logger"
	"consult_crm/internal/notification"
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddCommitment thêm commitment (trạng thái not done) và phát thông báo
func (s *ClientService) AddCommitment(ctx context.Context, mou string, input *clientdto.CommitmentInput, actor basesvc.Actor) (*clientmodels.Commitment, error) {
	now := s.now().UnixMilli()
	cm := clientmodels.Commitment{
		ID:        primitive.NewObjectID(),
		Text:      input.Text,
		Deadline:  input.Deadline,
		Status:    tracker.StatusNotDone,
		CreatedBy: actor.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	client, err := s.push(ctx, mou, actor, "commitments", cm)
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.commitment.add", mou, map[string]interface{}{"commitmentId": cm.ID.Hex()})

	notification.Emit(ctx, notification.CommitmentEvent{
		ClientID:     client.ID.Hex(),
		CustomerName: client.CustomerName,
		CssValue:     client.CssValue,
		Text:         cm.Text,
		Deadline:     cm.Deadline,
		Phase:        notification.PhaseCreated,
	})
	return &cm, nil
}

// AddCriticalHighlight thêm critical highlight (trạng thái not catered) và phát thông báo
func (s *ClientService) AddCriticalHighlight(ctx context.Context, mou string, input *clientdto.HighlightInput, actor basesvc.Actor) (*clientmodels.CriticalHighlight, error) {
	now := s.now().UnixMilli()
	h := clientmodels.CriticalHighlight{
		ID:        primitive.NewObjectID(),
		Category:  input.Category,
		Expiry:    input.Expiry,
		Status:    tracker.StatusNotCatered,
		CreatedBy: actor.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	client, err := s.push(ctx, mou, actor, "criticalHighlights", h)
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.highlight.add", mou, map[string]interface{}{"highlightId": h.ID.Hex()})

	notification.Emit(ctx, notification.CriticalHighlightEvent{
		ClientID:     client.ID.Hex(),
		CustomerName: client.CustomerName,
		CssValue:     client.CssValue,
		Category:     h.Category,
		Expiry:       h.Expiry,
		Phase:        notification.PhaseCreated,
	})
	return &h, nil
}

// itemRef mô tả một mục con (commitment hoặc highlight) trong client
type itemRef struct {
	field string // commitments | criticalHighlights
	kind  tracker.ItemKind
	id    primitive.ObjectID
}

func (r itemRef) verification(clientID primitive.ObjectID, status, action, by string, at int64) verimodels.Verification {
	row := verimodels.Verification{
		ClientID:        clientID,
		Status:          status,
		Action:          action,
		VerifiedBy:      by,
		UpdateTimestamp: at,
	}
	id := r.id
	if r.kind == tracker.KindCommitment {
		row.CommitmentID = &id
	} else {
		row.CriticalHighlightID = &id
	}
	return row
}

// setItemFields cập nhật các field của một mục con qua positional operator
func (s *ClientService) setItemFields(ctx context.Context, clientID primitive.ObjectID, ref itemRef, fields bson.M) (*clientmodels.Client, error) {
	set := bson.M{}
	for k, v := range fields {
		set[ref.field+".$."+k] = v
	}
	updated, err := s.store.FindOneAndUpdate(ctx,
		bson.M{"_id": clientID, ref.field + "._id": ref.id},
		&basesvc.UpdateData{Set: set, Inc: bson.M{"version": 1}}, nil)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// applyWithAudit ghi thay đổi rồi nối dòng audit; audit lỗi thì khôi phục snapshot.
func (s *ClientService) applyWithAudit(ctx context.Context, client *clientmodels.Client, ref itemRef, change, snapshot bson.M, row verimodels.Verification) (*clientmodels.Client, error) {
	updated, err := s.setItemFields(ctx, client.ID, ref, change)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, row); err != nil {
		log := logger.WithModule("client").WithFields(map[string]interface{}{
			"mou":    client.MouNumber,
			"itemId": ref.id.Hex(),
		})
		if _, rerr := s.setItemFields(ctx, client.ID, ref, snapshot); rerr != nil {
			log.WithError(rerr).Error("Khôi phục trạng thái sau khi ghi audit thất bại cũng lỗi")
		} else {
			log.WithError(err).Warn("Ghi audit thất bại, đã khôi phục trạng thái cũ")
		}
		return nil, err
	}
	return updated, nil
}

// SetCommitmentStatus đổi trạng thái commitment (done | not done), không động tới adminChecked
func (s *ClientService) SetCommitmentStatus(ctx context.Context, mou, itemID, status string, actor basesvc.Actor) (*clientmodels.Commitment, error) {
	if status != tracker.StatusDone && status != tracker.StatusNotDone {
		return nil, common.WithDetails(common.ErrInvalidInput, "status phải là done hoặc not done")
	}
	id, err := basesvc.ParseObjectID(itemID)
	if err != nil {
		return nil, err
	}
	client, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	cm, ok := client.FindCommitment(id)
	if !ok {
		return nil, common.WithDetails(common.ErrNotFound, "commitment "+itemID)
	}

	now := s.now().UnixMilli()
	ref := itemRef{field: "commitments", kind: tracker.KindCommitment, id: id}
	updated, err := s.applyWithAudit(ctx, client, ref,
		bson.M{"status": status, "updatedAt": now},
		bson.M{"status": cm.Status, "updatedAt": cm.UpdatedAt},
		ref.verification(client.ID, status, verimodels.ActionStatus, actor.Name, now))
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.commitment.status", mou, map[string]interface{}{"commitmentId": itemID, "status": status})

	notification.Emit(ctx, notification.CommitmentEvent{
		ClientID:     client.ID.Hex(),
		CustomerName: client.CustomerName,
		CssValue:     client.CssValue,
		Text:         cm.Text,
		Deadline:     cm.Deadline,
		Phase:        notification.PhaseStatus,
		Status:       status,
	})

	out, _ := updated.FindCommitment(id)
	return out, nil
}

// SetHighlightStatus đổi trạng thái critical highlight (catered | not catered)
func (s *ClientService) SetHighlightStatus(ctx context.Context, mou, itemID, status string, actor basesvc.Actor) (*clientmodels.CriticalHighlight, error) {
	if status != tracker.StatusCatered && status != tracker.StatusNotCatered {
		return nil, common.WithDetails(common.ErrInvalidInput, "status phải là catered hoặc not catered")
	}
	id, err := basesvc.ParseObjectID(itemID)
	if err != nil {
		return nil, err
	}
	client, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	h, ok := client.FindHighlight(id)
	if !ok {
		return nil, common.WithDetails(common.ErrNotFound, "critical highlight "+itemID)
	}

	now := s.now().UnixMilli()
	ref := itemRef{field: "criticalHighlights", kind: tracker.KindCriticalHighlight, id: id}
	updated, err := s.applyWithAudit(ctx, client, ref,
		bson.M{"status": status, "updatedAt": now},
		bson.M{"status": h.Status, "updatedAt": h.UpdatedAt},
		ref.verification(client.ID, status, verimodels.ActionStatus, actor.Name, now))
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.highlight.status", mou, map[string]interface{}{"highlightId": itemID, "status": status})

	notification.Emit(ctx, notification.CriticalHighlightEvent{
		ClientID:     client.ID.Hex(),
		CustomerName: client.CustomerName,
		CssValue:     client.CssValue,
		Category:     h.Category,
		Expiry:       h.Expiry,
		Phase:        notification.PhaseStatus,
		Status:       status,
	})

	out, _ := updated.FindHighlight(id)
	return out, nil
}

// AdminCheckCommitment đánh dấu admin đã xác minh commitment
func (s *ClientService) AdminCheckCommitment(ctx context.Context, mou, itemID string, actor basesvc.Actor) (*clientmodels.Commitment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	id, err := basesvc.ParseObjectID(itemID)
	if err != nil {
		return nil, err
	}
	client, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	cm, ok := client.FindCommitment(id)
	if !ok {
		return nil, common.WithDetails(common.ErrNotFound, "commitment "+itemID)
	}

	now := s.now().UnixMilli()
	ref := itemRef{field: "commitments", kind: tracker.KindCommitment, id: id}
	updated, err := s.applyWithAudit(ctx, client, ref,
		bson.M{"adminChecked": true, "adminCheckedBy": actor.Name, "adminCheckedAt": now},
		bson.M{"adminChecked": cm.AdminChecked, "adminCheckedBy": cm.AdminCheckedBy, "adminCheckedAt": cm.AdminCheckedAt},
		ref.verification(client.ID, cm.Status, verimodels.ActionAdminCheck, actor.Name, now))
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.commitment.admin_check", mou, map[string]interface{}{"commitmentId": itemID})

	out, _ := updated.FindCommitment(id)
	return out, nil
}

// AdminCheckHighlight đánh dấu admin đã xác minh critical highlight
func (s *ClientService) AdminCheckHighlight(ctx context.Context, mou, itemID string, actor basesvc.Actor) (*clientmodels.CriticalHighlight, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	id, err := basesvc.ParseObjectID(itemID)
	if err != nil {
		return nil, err
	}
	client, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	h, ok := client.FindHighlight(id)
	if !ok {
		return nil, common.WithDetails(common.ErrNotFound, "critical highlight "+itemID)
	}

	now := s.now().UnixMilli()
	ref := itemRef{field: "criticalHighlights", kind: tracker.KindCriticalHighlight, id: id}
	updated, err := s.applyWithAudit(ctx, client, ref,
		bson.M{"adminChecked": true, "adminCheckedBy": actor.Name, "adminCheckedAt": now},
		bson.M{"adminChecked": h.AdminChecked, "adminCheckedBy": h.AdminCheckedBy, "adminCheckedAt": h.AdminCheckedAt},
		ref.verification(client.ID, h.Status, verimodels.ActionAdminCheck, actor.Name, now))
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.highlight.admin_check", mou, map[string]interface{}{"highlightId": itemID})

	out, _ := updated.FindHighlight(id)
	return out, nil
}
