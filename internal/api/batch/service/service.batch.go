// Package batchsvc - Service sinh batch xoay vòng (crm_batches, crm_batch_states).
package batchsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	batchdto "consult_crm/internal/api/batch/dto"
	batchmodels "consult_crm/internal/api/batch/models"
	basesvc "consult_crm/internal/api/base/service"
	clientmodels "consult_crm/internal/api/client/models"
	"consult_crm/internal/common"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"
	"consult_crm/internal/metrics"
	"consult_crm/internal/rotation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPageSize dùng khi chưa có cấu hình
const DefaultPageSize = 20

// ClientLister là phần của ClientService mà batch cần
type ClientLister interface {
	ListForRotation(ctx context.Context, cssValue string, onlyRed bool) ([]clientmodels.Client, error)
	RecordContact(ctx context.Context, clientID primitive.ObjectID, medium string, actor basesvc.Actor) error
}

// BatchService sinh và đọc batch
type BatchService struct {
	states   basesvc.BaseServiceMongo[batchmodels.BatchState]
	batches  basesvc.BaseServiceMongo[batchmodels.Batch]
	clients  ClientLister
	pageSize int
	mode     rotation.WrapMode
	now      func() time.Time
}

// NewBatchService tạo BatchService trên crm_batch_states và crm_batches
func NewBatchService(clients ClientLister) (*BatchService, error) {
	statesColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.BatchStates)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.BatchStates, common.ErrNotFound)
	}
	batchesColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Batches)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Batches, common.ErrNotFound)
	}
	return NewBatchServiceWithStores(
		basesvc.NewBaseServiceMongo[batchmodels.BatchState](statesColl),
		basesvc.NewBaseServiceMongo[batchmodels.Batch](batchesColl),
		clients,
	)
}

// NewBatchServiceWithStores tạo BatchService với store cho trước; page size và wrap mode lấy từ config
func NewBatchServiceWithStores(states basesvc.BaseServiceMongo[batchmodels.BatchState], batches basesvc.BaseServiceMongo[batchmodels.Batch], clients ClientLister) (*BatchService, error) {
	pageSize, mode := DefaultPageSize, rotation.WrapFill
	if cfg := global.MongoDB_ServerConfig; cfg != nil {
		pageSize = cfg.BatchPageSize
		m, err := rotation.ParseWrapMode(cfg.BatchWrapMode)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	return &BatchService{
		states:   states,
		batches:  batches,
		clients:  clients,
		pageSize: pageSize,
		mode:     mode,
		now:      time.Now,
	}, nil
}

// checkScope kiểm tra kind và quyền của actor trên owner
func checkScope(cssValue, kind string, actor basesvc.Actor) error {
	if cssValue == "" {
		return common.WithDetails(common.ErrRequiredField, "css")
	}
	if !batchmodels.ValidKind(kind) {
		return common.WithDetails(common.ErrInvalidInput, "kind phải là routine hoặc critical")
	}
	if !actor.CanAccess(cssValue) {
		return common.ErrForbidden
	}
	return nil
}

// loadState đọc con trỏ hiện tại. Chưa có thì trả về state rỗng và exists = false.
func (s *BatchService) loadState(ctx context.Context, cssValue, kind string) (batchmodels.BatchState, bool, error) {
	st, err := s.states.FindOne(ctx, bson.M{"cssValue": cssValue, "kind": kind}, nil)
	if errors.Is(err, common.ErrNotFound) {
		return batchmodels.BatchState{CssValue: cssValue, Kind: kind}, false, nil
	}
	if err != nil {
		return batchmodels.BatchState{}, false, err
	}
	return st, true, nil
}

func toRotationState(st batchmodels.BatchState) rotation.State {
	return rotation.State{
		Offset:       st.LastBatchOffset,
		Cycle:        st.CycleCount,
		TotalBatches: st.TotalBatches,
		LastListSize: st.LastListSize,
	}
}

func stateFields(st rotation.State) bson.M {
	return bson.M{
		"lastBatchOffset": st.Offset,
		"cycleCount":      st.Cycle,
		"totalBatches":    st.TotalBatches,
		"lastListSize":    st.LastListSize,
	}
}

// GenerateBatch sinh batch kế tiếp cho (cssValue, kind).
// Con trỏ được ghi bằng compare-and-swap trên totalBatches: lời gọi đồng thời thua CAS nhận ErrConflict.
func (s *BatchService) GenerateBatch(ctx context.Context, cssValue, kind string, actor basesvc.Actor) (*batchdto.BatchResult, error) {
	if err := checkScope(cssValue, kind, actor); err != nil {
		return nil, err
	}

	clients, err := s.clients.ListForRotation(ctx, cssValue, kind == batchmodels.KindCritical)
	if err != nil {
		return nil, err
	}
	prev, exists, err := s.loadState(ctx, cssValue, kind)
	if err != nil {
		return nil, err
	}

	page, err := rotation.Next(len(clients), s.pageSize, s.mode, toRotationState(prev))
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidState, err.Error())
	}
	if page.Empty {
		return &batchdto.BatchResult{Empty: true, Stats: page.Stats}, nil
	}

	now := s.now().UnixMilli()
	casFilter := bson.M{"cssValue": cssValue, "kind": kind, "totalBatches": prev.TotalBatches}
	update := &basesvc.UpdateData{Set: stateFields(page.Next)}
	opts := mongoopts.FindOneAndUpdate()
	if !exists {
		update.SetOnInsert = bson.M{"createdAt": now}
		opts.SetUpsert(true)
	}
	if _, err := s.states.FindOneAndUpdate(ctx, casFilter, update, opts); err != nil {
		// Không khớp totalBatches cũ hoặc upsert trùng unique (cssValue, kind): đã có lời gọi khác đi trước
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.WithDetails(common.ErrConflict, "batch đang được sinh bởi một yêu cầu khác")
		}
		return nil, err
	}

	entries := make([]batchmodels.BatchEntry, 0, len(page.Indices))
	for _, i := range page.Indices {
		c := clients[i]
		entries = append(entries, batchmodels.BatchEntry{
			ClientID:     c.ID,
			MouNumber:    c.MouNumber,
			CustomerName: c.CustomerName,
			Medium:       c.Medium,
		})
	}
	batch := batchmodels.Batch{
		CssValue:    cssValue,
		Kind:        kind,
		Entries:     entries,
		StartOffset: page.StartOffset,
		Cycle:       page.Next.Cycle,
		BatchNumber: page.Next.TotalBatches,
		ListChanged: page.ListChanged,
		GeneratedAt: now,
	}
	stored, err := s.batches.InsertOne(ctx, batch)
	if err != nil {
		s.restoreState(ctx, prev, exists, page.Next)
		return nil, err
	}

	metrics.RecordBatch(kind)
	logger.WithModule("batch").WithFields(map[string]interface{}{
		"css":         cssValue,
		"kind":        kind,
		"batchNumber": stored.BatchNumber,
		"cycle":       stored.Cycle,
		"size":        len(entries),
	}).Info("📦 [BATCH] Đã sinh batch")

	return &batchdto.BatchResult{Batch: &stored, Stats: page.Stats, ListChanged: page.ListChanged}, nil
}

// restoreState đưa con trỏ về giá trị trước khi sinh batch lỗi
func (s *BatchService) restoreState(ctx context.Context, prev batchmodels.BatchState, existed bool, next rotation.State) {
	filter := bson.M{"cssValue": prev.CssValue, "kind": prev.Kind, "totalBatches": next.TotalBatches}
	var err error
	if existed {
		_, err = s.states.FindOneAndUpdate(ctx, filter, &basesvc.UpdateData{Set: stateFields(toRotationState(prev))}, nil)
	} else {
		err = s.states.DeleteOne(ctx, filter)
	}
	if err != nil {
		logger.WithModule("batch").WithError(err).WithField("css", prev.CssValue).Error("❌ [BATCH] Không khôi phục được con trỏ sau khi lưu batch lỗi")
	}
}

// Stats trả về thống kê hiện tại mà không sinh batch
func (s *BatchService) Stats(ctx context.Context, cssValue, kind string, actor basesvc.Actor) (*rotation.Stats, error) {
	if err := checkScope(cssValue, kind, actor); err != nil {
		return nil, err
	}
	clients, err := s.clients.ListForRotation(ctx, cssValue, kind == batchmodels.KindCritical)
	if err != nil {
		return nil, err
	}
	st, _, err := s.loadState(ctx, cssValue, kind)
	if err != nil {
		return nil, err
	}
	stats := rotation.Preview(len(clients), s.pageSize, s.mode, toRotationState(st))
	return &stats, nil
}

// History trả về các batch gần nhất, mới nhất trước
func (s *BatchService) History(ctx context.Context, cssValue, kind string, limit int, actor basesvc.Actor) ([]batchmodels.Batch, error) {
	if err := checkScope(cssValue, kind, actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := mongoopts.Find().
		SetSort(bson.D{{Key: "generatedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.batches.Find(ctx, bson.M{"cssValue": cssValue, "kind": kind}, opts)
}

// RecordEntryMedium ghi kênh liên hệ cho một khách trong batch và cập nhật medium của hồ sơ khách
func (s *BatchService) RecordEntryMedium(ctx context.Context, batchID, clientID primitive.ObjectID, medium string, actor basesvc.Actor) (*batchmodels.Batch, error) {
	filter := actor.OwnerScope(bson.M{"_id": batchID, "entries.clientId": clientID})
	updated, err := s.batches.FindOneAndUpdate(ctx, filter, &basesvc.UpdateData{Set: bson.M{
		"entries.$.medium":      medium,
		"entries.$.contactedAt": s.now().UnixMilli(),
	}}, nil)
	if err != nil {
		return nil, err
	}
	if err := s.clients.RecordContact(ctx, clientID, medium, actor); err != nil {
		return nil, err
	}
	logger.Audit(actor.Name, "batch.medium", "", map[string]interface{}{"batchId": batchID.Hex(), "clientId": clientID.Hex(), "medium": medium})
	return &updated, nil
}
