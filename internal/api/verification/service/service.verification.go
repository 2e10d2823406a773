// Package verisvc - Service audit xác minh (crm_verifications), chỉ thêm mới.
package verisvc

import (
	"context"
	"fmt"
	"time"

	basesvc "consult_crm/internal/api/base/service"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"
	"consult_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// VerificationService ghi và đọc audit trail
type VerificationService struct {
	*basesvc.BaseServiceMongoImpl[verimodels.Verification]
}

// NewVerificationService tạo VerificationService mới
func NewVerificationService() (*VerificationService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Verifications)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Verifications, common.ErrNotFound)
	}
	return &VerificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[verimodels.Verification](coll),
	}, nil
}

// Record thêm một dòng audit sau khi validate
func (s *VerificationService) Record(ctx context.Context, row verimodels.Verification) error {
	if row.UpdateTimestamp == 0 {
		row.UpdateTimestamp = time.Now().UnixMilli()
	}
	if err := row.Validate(); err != nil {
		return err
	}
	_, err := s.InsertOne(ctx, row)
	return err
}

// ListByClient trả về audit của một khách theo thời gian tăng dần
func (s *VerificationService) ListByClient(ctx context.Context, clientID primitive.ObjectID, limit int) ([]verimodels.Verification, error) {
	if limit <= 0 {
		limit = 200
	}
	opts := mongoopts.Find().
		SetSort(bson.D{{Key: "updateTimestamp", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return s.Find(ctx, bson.M{"clientId": clientID}, opts)
}
