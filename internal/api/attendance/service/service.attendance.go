// Package attendancesvc - Service chấm công và giờ nghỉ.
package attendancesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	attendancemodels "consult_crm/internal/api/attendance/models"
	basesvc "consult_crm/internal/api/base/service"
	"consult_crm/internal/common"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"
	"consult_crm/internal/notification"
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// MaxQueryDays giới hạn số ngày của một truy vấn thống kê
const MaxQueryDays = 366

// AttendanceService xử lý check-in, check-out, giờ nghỉ và thống kê chuyên cần
type AttendanceService struct {
	checkIns basesvc.BaseServiceMongo[attendancemodels.CheckIn]
	breaks   basesvc.BaseServiceMongo[attendancemodels.Break]
	now      func() time.Time
}

// NewAttendanceService tạo AttendanceService trên crm_checkins và crm_breaks
func NewAttendanceService() (*AttendanceService, error) {
	checkInColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CheckIns)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.CheckIns, common.ErrNotFound)
	}
	breakColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Breaks)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Breaks, common.ErrNotFound)
	}
	return NewAttendanceServiceWithStores(
		basesvc.NewBaseServiceMongo[attendancemodels.CheckIn](checkInColl),
		basesvc.NewBaseServiceMongo[attendancemodels.Break](breakColl),
	), nil
}

// NewAttendanceServiceWithStores tạo AttendanceService với store cho trước
func NewAttendanceServiceWithStores(checkIns basesvc.BaseServiceMongo[attendancemodels.CheckIn], breaks basesvc.BaseServiceMongo[attendancemodels.Break]) *AttendanceService {
	return &AttendanceService{checkIns: checkIns, breaks: breaks, now: time.Now}
}

// CheckIn ghi check-in của ngày hôm nay. Gọi lại trong ngày giữ nguyên giờ check-in đầu tiên
// và mở lại ngày nếu đã check-out.
func (s *AttendanceService) CheckIn(ctx context.Context, actor basesvc.Actor) (*attendancemodels.CheckIn, error) {
	now := s.now()
	at := now.UnixMilli()
	filter := bson.M{"userName": actor.Name, "day": now.Format(tracker.DayLayout)}
	update := &basesvc.UpdateData{
		SetOnInsert: bson.M{"checkInAt": at, "createdAt": at},
		Unset:       bson.M{"checkOutAt": ""},
	}
	rec, err := s.checkIns.FindOneAndUpdate(ctx, filter, update, mongoopts.FindOneAndUpdate().SetUpsert(true))
	if err != nil {
		return nil, err
	}

	logger.WithModule("attendance").WithField("user", actor.Name).Info("🕘 [ATTENDANCE] Check-in")
	notification.Emit(ctx, notification.CheckInStatusEvent{UserName: actor.Name, Status: notification.CheckedIn, At: at})
	return &rec, nil
}

// CheckOut ghi giờ check-out. Chưa check-in hôm nay trả về ErrInvalidState.
func (s *AttendanceService) CheckOut(ctx context.Context, actor basesvc.Actor) (*attendancemodels.CheckIn, error) {
	now := s.now()
	at := now.UnixMilli()
	filter := bson.M{"userName": actor.Name, "day": now.Format(tracker.DayLayout)}
	rec, err := s.checkIns.FindOneAndUpdate(ctx, filter, &basesvc.UpdateData{Set: bson.M{"checkOutAt": at}}, nil)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.WithDetails(common.ErrInvalidState, "chưa check-in hôm nay")
	}
	if err != nil {
		return nil, err
	}

	logger.WithModule("attendance").WithField("user", actor.Name).Info("🕔 [ATTENDANCE] Check-out")
	notification.Emit(ctx, notification.CheckInStatusEvent{UserName: actor.Name, Status: notification.CheckedOut, At: at})
	return &rec, nil
}

// openBreak là filter của lần nghỉ chưa kết thúc
func openBreak(userName string) bson.M {
	return bson.M{"userName": userName, "endedAt": bson.M{"$exists": false}}
}

// StartBreak bắt đầu nghỉ. Đang nghỉ thì trả về ErrInvalidState.
func (s *AttendanceService) StartBreak(ctx context.Context, reason string, actor basesvc.Actor) (*attendancemodels.Break, error) {
	_, err := s.breaks.FindOne(ctx, openBreak(actor.Name), nil)
	if err == nil {
		return nil, common.WithDetails(common.ErrInvalidState, "đang trong giờ nghỉ")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	at := s.now().UnixMilli()
	rec, err := s.breaks.InsertOne(ctx, attendancemodels.Break{UserName: actor.Name, Reason: reason, StartedAt: at})
	if err != nil {
		return nil, err
	}

	logger.WithModule("attendance").WithFields(map[string]interface{}{"user": actor.Name, "reason": reason}).Info("☕ [ATTENDANCE] Bắt đầu nghỉ")
	notification.Emit(ctx, notification.BreakStartedEvent{UserName: actor.Name, Reason: reason, StartedAt: at})
	return &rec, nil
}

// EndBreak kết thúc lần nghỉ đang mở. Không có thì trả về ErrInvalidState.
func (s *AttendanceService) EndBreak(ctx context.Context, actor basesvc.Actor) (*attendancemodels.Break, error) {
	opts := mongoopts.FindOneAndUpdate().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	rec, err := s.breaks.FindOneAndUpdate(ctx, openBreak(actor.Name), &basesvc.UpdateData{Set: bson.M{"endedAt": s.now().UnixMilli()}}, opts)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.WithDetails(common.ErrInvalidState, "không có giờ nghỉ đang mở")
	}
	if err != nil {
		return nil, err
	}
	logger.WithModule("attendance").WithField("user", actor.Name).Info("☕ [ATTENDANCE] Kết thúc nghỉ")
	return &rec, nil
}

// Stats tính chuyên cần của userName trên đúng danh sách ngày truyền vào.
// User thường chỉ xem được của chính mình.
func (s *AttendanceService) Stats(ctx context.Context, userName string, dates []string, actor basesvc.Actor) (*tracker.AttendanceStats, error) {
	if !actor.CanAccess(userName) {
		return nil, common.ErrForbidden
	}
	if len(dates) == 0 {
		return nil, common.WithDetails(common.ErrRequiredField, "dates hoặc from/to")
	}
	if len(dates) > MaxQueryDays {
		return nil, common.WithDetails(common.ErrInvalidInput, fmt.Sprintf("tối đa %d ngày", MaxQueryDays))
	}
	for _, d := range dates {
		if _, err := time.Parse(tracker.DayLayout, d); err != nil {
			return nil, common.WithDetails(common.ErrInvalidFormat, "ngày không đúng định dạng YYYY-MM-DD: "+d)
		}
	}

	records, err := s.checkIns.Find(ctx, bson.M{"userName": userName, "day": bson.M{"$in": dates}}, nil)
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(records))
	for _, r := range records {
		days = append(days, r.Day)
	}
	stats := tracker.Attendance(dates, days)
	return &stats, nil
}

// Breaks trả về các lần nghỉ của userName, mới nhất trước
func (s *AttendanceService) Breaks(ctx context.Context, userName string, limit int, actor basesvc.Actor) ([]attendancemodels.Break, error) {
	if !actor.CanAccess(userName) {
		return nil, common.ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := mongoopts.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(int64(limit))
	return s.breaks.Find(ctx, bson.M{"userName": userName}, opts)
}
