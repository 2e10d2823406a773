package clientsvc

import (
	"context"

	basesvc "consult_crm/internal/api/base/service"
	clientdto "consult_crm/internal/api/client/dto"
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson"
)

// Deadlines phân loại commitment / highlight đang mở của một khách
func (s *ClientService) Deadlines(ctx context.Context, mou string, actor basesvc.Actor) (*clientdto.DeadlineSummary, error) {
	client, err := s.FindByMou(ctx, mou, actor)
	if err != nil {
		return nil, err
	}
	items := client.TrackerItems()
	return &clientdto.DeadlineSummary{
		Remaining: tracker.RemainingCount(items),
		Items:     tracker.ScanClient(items, s.now(), s.threshold),
	}, nil
}

// OwnerDeadlines gộp các mục đang mở của mọi khách thuộc một CSS user
func (s *ClientService) OwnerDeadlines(ctx context.Context, cssValue string, actor basesvc.Actor) (*clientdto.DeadlineSummary, error) {
	clients, err := s.FindByOwner(ctx, clientdto.ClientListFilter{CssValue: cssValue}, actor)
	if err != nil {
		return nil, err
	}
	var items []tracker.Item
	for i := range clients {
		items = append(items, clients[i].TrackerItems()...)
	}
	return &clientdto.DeadlineSummary{
		Remaining: tracker.RemainingCount(items),
		Items:     tracker.ScanClient(items, s.now(), s.threshold),
	}, nil
}

// OpenItems trả về mọi commitment / highlight chưa hoàn tất (dùng bởi worker quét deadline)
func (s *ClientService) OpenItems(ctx context.Context) ([]tracker.Item, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"commitments": bson.M{"$elemMatch": bson.M{"status": bson.M{"$ne": tracker.StatusDone}}}},
		bson.M{"criticalHighlights": bson.M{"$elemMatch": bson.M{"status": bson.M{"$ne": tracker.StatusCatered}}}},
	}}
	clients, err := s.store.Find(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	var items []tracker.Item
	for i := range clients {
		for _, it := range clients[i].TrackerItems() {
			if it.Open() {
				items = append(items, it)
			}
		}
	}
	return items, nil
}
