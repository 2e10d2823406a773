// Package clientsvc - Service hồ sơ khách (crm_clients).
package clientsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	basesvc "consult_crm/internal/api/base/service"
	clientdto "consult_crm/internal/api/client/dto"
	clientmodels "consult_crm/internal/api/client/models"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultStatus là status của khách mới tạo
const DefaultStatus = global.DefaultClientStatus

// VerificationRecorder ghi một dòng audit xác minh
type VerificationRecorder interface {
	Record(ctx context.Context, row verimodels.Verification) error
}

// ClientService xử lý đọc/ghi hồ sơ khách
type ClientService struct {
	store     basesvc.BaseServiceMongo[clientmodels.Client]
	audit     VerificationRecorder
	threshold time.Duration
	now       func() time.Time
}

// NewClientService tạo ClientService trên collection crm_clients
func NewClientService(audit VerificationRecorder) (*ClientService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Clients, common.ErrNotFound)
	}
	return NewClientServiceWithStore(basesvc.NewBaseServiceMongo[clientmodels.Client](coll), audit), nil
}

// NewClientServiceWithStore tạo ClientService với store cho trước
func NewClientServiceWithStore(store basesvc.BaseServiceMongo[clientmodels.Client], audit VerificationRecorder) *ClientService {
	threshold := tracker.DefaultThreshold
	if cfg := global.MongoDB_ServerConfig; cfg != nil {
		threshold = time.Duration(cfg.DeadlineNearThresholdSeconds) * time.Second
	}
	return &ClientService{store: store, audit: audit, threshold: threshold, now: time.Now}
}

// Threshold trả về ngưỡng "sắp đến hạn" đang dùng
func (s *ClientService) Threshold() time.Duration {
	return s.threshold
}

// Create tạo khách mới. MOU trùng trả về ErrDuplicate.
func (s *ClientService) Create(ctx context.Context, input *clientdto.ClientCreateInput, actor basesvc.Actor) (*clientmodels.Client, error) {
	css := strings.TrimSpace(input.CssValue)
	if css == "" {
		css = actor.Name
	}
	if !actor.CanAccess(css) {
		return nil, common.ErrForbidden
	}
	flag := input.Flag
	if flag == "" {
		flag = clientmodels.FlagYellow
	}
	status := input.Status
	if status == "" {
		status = DefaultStatus
	}

	now := s.now().UnixMilli()
	doc := clientmodels.Client{
		MouNumber:              strings.TrimSpace(input.MouNumber),
		CustomerName:           input.CustomerName,
		Email:                  input.Email,
		Phone:                  input.Phone,
		Country:                input.Country,
		CssValue:               css,
		Status:                 status,
		Flag:                   flag,
		Comments:               []clientmodels.Comment{},
		Commitments:            []clientmodels.Commitment{},
		CriticalHighlights:     []clientmodels.CriticalHighlight{},
		Checklist:              []clientmodels.ChecklistItem{},
		EndorsementSubmissions: []clientmodels.EndorsementSubmission{},
		CssHistory:             []clientmodels.CssChange{},
		StageHistory:           []clientmodels.StageChange{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	created, err := s.store.InsertOne(ctx, doc)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.WithDetails(common.ErrDuplicate, "mouNumber đã tồn tại: "+doc.MouNumber)
		}
		return nil, err
	}
	logger.Audit(actor.Name, "client.create", created.MouNumber, map[string]interface{}{"cssValue": css})
	return &created, nil
}

// FindByMou tìm khách theo MOU; user thường chỉ thấy khách của mình
func (s *ClientService) FindByMou(ctx context.Context, mou string, actor basesvc.Actor) (*clientmodels.Client, error) {
	client, err := s.store.FindOne(ctx, actor.OwnerScope(bson.M{"mouNumber": mou}), nil)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByID tìm khách theo _id
func (s *ClientService) FindByID(ctx context.Context, id primitive.ObjectID, actor basesvc.Actor) (*clientmodels.Client, error) {
	client, err := s.store.FindOne(ctx, actor.OwnerScope(bson.M{"_id": id}), nil)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// stableOrder là thứ tự ổn định dùng cho danh sách và xoay vòng batch
var stableOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// FindByOwner liệt kê khách theo bộ lọc, theo thứ tự tạo.
// User thường luôn bị giới hạn về cssValue của chính mình.
func (s *ClientService) FindByOwner(ctx context.Context, f clientdto.ClientListFilter, actor basesvc.Actor) ([]clientmodels.Client, error) {
	filter := bson.M{}
	if f.CssValue != "" {
		filter["cssValue"] = f.CssValue
	}
	filter = actor.OwnerScope(filter)
	if f.Flag != "" {
		filter["flag"] = f.Flag
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Pinned != nil {
		filter["pinned"] = *f.Pinned
	}
	return s.store.Find(ctx, filter, mongoopts.Find().SetSort(stableOrder))
}

// ListForRotation trả về danh sách khách của owner theo thứ tự ổn định để xoay vòng.
// onlyRed = true chỉ lấy khách cờ đỏ.
func (s *ClientService) ListForRotation(ctx context.Context, cssValue string, onlyRed bool) ([]clientmodels.Client, error) {
	filter := bson.M{"cssValue": cssValue}
	if onlyRed {
		filter["flag"] = clientmodels.FlagRed
	}
	opts := mongoopts.Find().
		SetSort(stableOrder).
		SetProjection(bson.M{"_id": 1, "mouNumber": 1, "customerName": 1, "medium": 1, "cssValue": 1, "flag": 1, "createdAt": 1})
	return s.store.Find(ctx, filter, opts)
}

// PatchFields cập nhật status, stage, flag, pinned, medium.
// Có version thì version cũ trả về ErrConflict, không có thì ghi đè.
func (s *ClientService) PatchFields(ctx context.Context, mou string, input *clientdto.ClientPatchInput, actor basesvc.Actor) (*clientmodels.Client, error) {
	if input.IsEmpty() {
		return nil, common.WithDetails(common.ErrInvalidInput, "không có field nào để cập nhật")
	}
	current, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != current.Version {
		return nil, common.WithDetails(common.ErrConflict, map[string]interface{}{"currentVersion": current.Version})
	}

	now := s.now().UnixMilli()
	set := bson.M{}
	var history []clientmodels.StageChange
	if input.Status != nil && *input.Status != current.Status {
		set["status"] = *input.Status
		history = append(history, clientmodels.StageChange{Field: "status", From: current.Status, To: *input.Status, ChangedBy: actor.Name, ChangedAt: now})
	}
	if input.Stage != nil && *input.Stage != current.Stage {
		set["stage"] = *input.Stage
		history = append(history, clientmodels.StageChange{Field: "stage", From: current.Stage, To: *input.Stage, ChangedBy: actor.Name, ChangedAt: now})
	}
	if input.Flag != nil {
		set["flag"] = *input.Flag
	}
	if input.Pinned != nil {
		set["pinned"] = *input.Pinned
	}
	if input.Medium != nil {
		set["medium"] = *input.Medium
	}

	filter := bson.M{"_id": current.ID}
	if input.Version != nil {
		filter["version"] = *input.Version
	}
	update := &basesvc.UpdateData{Set: set, Inc: bson.M{"version": 1}}
	if len(history) > 0 {
		update.Push = bson.M{"stageHistory": bson.M{"$each": history}}
	}

	updated, err := s.store.FindOneAndUpdate(ctx, filter, update, nil)
	if err != nil {
		if input.Version != nil && errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	logger.Audit(actor.Name, "client.patch", mou, set)
	return &updated, nil
}

// ReassignCss đổi CSS owner (chỉ admin), lịch sử được nối thêm
func (s *ClientService) ReassignCss(ctx context.Context, mou, to string, actor basesvc.Actor) (*clientmodels.Client, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, common.WithDetails(common.ErrRequiredField, "to")
	}
	current, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	if current.CssValue == to {
		return current, nil
	}

	change := clientmodels.CssChange{From: current.CssValue, To: to, ChangedBy: actor.Name, ChangedAt: s.now().UnixMilli()}
	update := &basesvc.UpdateData{
		Set:  bson.M{"cssValue": to},
		Push: bson.M{"cssHistory": change},
		Inc:  bson.M{"version": 1},
	}
	// Lọc theo owner hiện tại để hai lần đổi đồng thời không ghi đè nhau
	updated, err := s.store.FindOneAndUpdate(ctx, bson.M{"_id": current.ID, "cssValue": current.CssValue}, update, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	logger.Audit(actor.Name, "client.reassign", mou, map[string]interface{}{"from": change.From, "to": to})
	return &updated, nil
}

// push nối value vào mảng field của khách (trong phạm vi quyền của actor)
func (s *ClientService) push(ctx context.Context, mou string, actor basesvc.Actor, field string, value interface{}) (*clientmodels.Client, error) {
	update := &basesvc.UpdateData{
		Push: bson.M{field: value},
		Inc:  bson.M{"version": 1},
	}
	updated, err := s.store.FindOneAndUpdate(ctx, actor.OwnerScope(bson.M{"mouNumber": mou}), update, nil)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddComment thêm comment, text rỗng trả về ErrRequiredField
func (s *ClientService) AddComment(ctx context.Context, mou, text string, actor basesvc.Actor) (*clientmodels.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.WithDetails(common.ErrRequiredField, "text")
	}
	comment := clientmodels.Comment{
		ID:        primitive.NewObjectID(),
		Author:    actor.Name,
		Text:      text,
		CreatedAt: s.now().UnixMilli(),
	}
	if _, err := s.push(ctx, mou, actor, "comments", comment); err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.comment", mou, nil)
	return &comment, nil
}

// SetChecklistItem đặt trạng thái một mục checklist, tạo mới nếu chưa có
func (s *ClientService) SetChecklistItem(ctx context.Context, mou string, input *clientdto.ChecklistInput, actor basesvc.Actor) (*clientmodels.Client, error) {
	current, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()

	exists := false
	for _, it := range current.Checklist {
		if it.Name == input.Name {
			exists = true
			break
		}
	}

	var updated clientmodels.Client
	if exists {
		updated, err = s.store.FindOneAndUpdate(ctx,
			bson.M{"_id": current.ID, "checklist.name": input.Name},
			&basesvc.UpdateData{
				Set: bson.M{
					"checklist.$.checked":   input.Checked,
					"checklist.$.updatedAt": now,
					"checklist.$.updatedBy": actor.Name,
				},
				Inc: bson.M{"version": 1},
			}, nil)
	} else {
		item := clientmodels.ChecklistItem{Name: input.Name, Checked: input.Checked, UpdatedAt: now, UpdatedBy: actor.Name}
		updated, err = s.store.FindOneAndUpdate(ctx,
			bson.M{"_id": current.ID, "checklist.name": bson.M{"$ne": input.Name}},
			&basesvc.UpdateData{Push: bson.M{"checklist": item}, Inc: bson.M{"version": 1}}, nil)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	logger.Audit(actor.Name, "client.checklist", mou, map[string]interface{}{"name": input.Name, "checked": input.Checked})
	return &updated, nil
}

// AddEndorsementSubmission ghi một lần nộp endorsement
func (s *ClientService) AddEndorsementSubmission(ctx context.Context, mou string, input *clientdto.EndorsementInput, actor basesvc.Actor) (*clientmodels.Client, error) {
	sub := clientmodels.EndorsementSubmission{
		Body:        input.Body,
		Reference:   input.Reference,
		SubmittedBy: actor.Name,
		SubmittedAt: s.now().UnixMilli(),
	}
	updated, err := s.push(ctx, mou, actor, "endorsementSubmissions", sub)
	if err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "client.endorsement", mou, nil)
	return updated, nil
}

// RecordContact ghi kênh liên hệ gần nhất của khách (từ batch)
func (s *ClientService) RecordContact(ctx context.Context, clientID primitive.ObjectID, medium string, actor basesvc.Actor) error {
	_, err := s.store.FindOneAndUpdate(ctx, actor.OwnerScope(bson.M{"_id": clientID}),
		&basesvc.UpdateData{Set: bson.M{"medium": medium}, Inc: bson.M{"version": 1}}, nil)
	return err
}
