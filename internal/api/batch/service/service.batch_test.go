package batchsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	batchmodels "consult_crm/internal/api/batch/models"
	basesvc "consult_crm/internal/api/base/service"
	clientmodels "consult_crm/internal/api/client/models"
	"consult_crm/internal/common"
	"consult_crm/internal/rotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeStateStore giữ state trong bộ nhớ và kiểm tra điều kiện totalBatches như Mongo
type fakeStateStore struct {
	docs         map[string]*batchmodels.BatchState
	beforeUpdate func()
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{docs: map[string]*batchmodels.BatchState{}}
}

func stateKey(filter interface{}) (string, bson.M) {
	m := filter.(bson.M)
	return fmt.Sprintf("%v/%v", m["cssValue"], m["kind"]), m
}

func (f *fakeStateStore) InsertOne(_ context.Context, data batchmodels.BatchState) (batchmodels.BatchState, error) {
	f.docs[data.CssValue+"/"+data.Kind] = &data
	return data, nil
}

func (f *fakeStateStore) FindOne(_ context.Context, filter interface{}, _ *options.FindOneOptions) (batchmodels.BatchState, error) {
	key, _ := stateKey(filter)
	doc, ok := f.docs[key]
	if !ok {
		return batchmodels.BatchState{}, common.ErrNotFound
	}
	return *doc, nil
}

func (f *fakeStateStore) Find(context.Context, interface{}, *options.FindOptions) ([]batchmodels.BatchState, error) {
	return nil, nil
}

func (f *fakeStateStore) FindOneAndUpdate(_ context.Context, filter interface{}, update *basesvc.UpdateData, opts *options.FindOneAndUpdateOptions) (batchmodels.BatchState, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	key, m := stateKey(filter)
	doc, ok := f.docs[key]
	upsert := opts != nil && opts.Upsert != nil && *opts.Upsert
	switch {
	case ok && doc.TotalBatches == m["totalBatches"]:
	case !ok && upsert:
		doc = &batchmodels.BatchState{CssValue: m["cssValue"].(string), Kind: m["kind"].(string)}
		f.docs[key] = doc
	case ok && upsert:
		return batchmodels.BatchState{}, common.ErrMongoDuplicate
	default:
		return batchmodels.BatchState{}, common.ErrNotFound
	}
	set := update.Set
	doc.LastBatchOffset = set["lastBatchOffset"].(int)
	doc.CycleCount = set["cycleCount"].(int)
	doc.TotalBatches = set["totalBatches"].(int)
	doc.LastListSize = set["lastListSize"].(int)
	return *doc, nil
}

func (f *fakeStateStore) DeleteOne(_ context.Context, filter interface{}) error {
	key, _ := stateKey(filter)
	delete(f.docs, key)
	return nil
}

type fakeBatchStore struct {
	batches   []batchmodels.Batch
	insertErr error
	lastSet   bson.M
}

func (f *fakeBatchStore) InsertOne(_ context.Context, data batchmodels.Batch) (batchmodels.Batch, error) {
	if f.insertErr != nil {
		return batchmodels.Batch{}, f.insertErr
	}
	data.ID = primitive.NewObjectID()
	f.batches = append(f.batches, data)
	return data, nil
}

func (f *fakeBatchStore) FindOne(context.Context, interface{}, *options.FindOneOptions) (batchmodels.Batch, error) {
	return batchmodels.Batch{}, common.ErrNotFound
}

func (f *fakeBatchStore) Find(context.Context, interface{}, *options.FindOptions) ([]batchmodels.Batch, error) {
	return f.batches, nil
}

func (f *fakeBatchStore) FindOneAndUpdate(_ context.Context, filter interface{}, update *basesvc.UpdateData, _ *options.FindOneAndUpdateOptions) (batchmodels.Batch, error) {
	m := filter.(bson.M)
	for _, b := range f.batches {
		if b.ID != m["_id"] {
			continue
		}
		if css, ok := m["cssValue"]; ok && css != b.CssValue {
			break
		}
		f.lastSet = update.Set
		return b, nil
	}
	return batchmodels.Batch{}, common.ErrNotFound
}

func (f *fakeBatchStore) DeleteOne(context.Context, interface{}) error { return nil }

type fakeLister struct {
	clients  []clientmodels.Client
	contacts map[primitive.ObjectID]string
}

func newFakeLister(n, redEvery int) *fakeLister {
	l := &fakeLister{contacts: map[primitive.ObjectID]string{}}
	for i := 0; i < n; i++ {
		flag := clientmodels.FlagYellow
		if redEvery > 0 && i%redEvery == 0 {
			flag = clientmodels.FlagRed
		}
		l.clients = append(l.clients, clientmodels.Client{
			ID:        primitive.NewObjectID(),
			MouNumber: fmt.Sprintf("MOU-%02d", i),
			CssValue:  "amina",
			Flag:      flag,
		})
	}
	return l
}

func (l *fakeLister) ListForRotation(_ context.Context, cssValue string, onlyRed bool) ([]clientmodels.Client, error) {
	var out []clientmodels.Client
	for _, c := range l.clients {
		if c.CssValue == cssValue && (!onlyRed || c.Flag == clientmodels.FlagRed) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l *fakeLister) RecordContact(_ context.Context, clientID primitive.ObjectID, medium string, _ basesvc.Actor) error {
	l.contacts[clientID] = medium
	return nil
}

var amina = basesvc.Actor{Name: "amina"}

func newService(t *testing.T, lister *fakeLister) (*BatchService, *fakeStateStore, *fakeBatchStore) {
	t.Helper()
	states, batches := newFakeStateStore(), &fakeBatchStore{}
	s, err := NewBatchServiceWithStores(states, batches, lister)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1_704_103_200_000) }
	return s, states, batches
}

func mous(b *batchmodels.Batch) []string {
	out := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		out = append(out, e.MouNumber)
	}
	return out
}

func expected(lister *fakeLister, idx ...int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, lister.clients[i].MouNumber)
	}
	return out
}

func span(from, to int) []int {
	out := []int{}
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestGenerateBatch_AminaScenario(t *testing.T) {
	lister := newFakeLister(45, 0)
	s, states, batches := newService(t, lister)
	ctx := context.Background()

	first, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.Equal(t, expected(lister, span(0, 20)...), mous(first.Batch))
	assert.Equal(t, 0, first.Batch.Cycle)
	assert.Equal(t, 1, first.Batch.BatchNumber)

	second, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.Equal(t, expected(lister, span(20, 40)...), mous(second.Batch))
	assert.Equal(t, 0, second.Batch.Cycle)

	third, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.Equal(t, expected(lister, append(span(40, 45), span(0, 15)...)...), mous(third.Batch))
	assert.Equal(t, 1, third.Batch.Cycle)
	assert.Equal(t, 45, third.Stats.TotalClients)
	assert.Equal(t, 20, third.Stats.CurrentBatchCount)
	assert.Equal(t, 3, third.Stats.TotalBatches)
	assert.Equal(t, 1_704_103_200_000, int(third.Batch.GeneratedAt))

	st := states.docs["amina/routine"]
	require.NotNil(t, st)
	assert.Equal(t, 15, st.LastBatchOffset)
	assert.Equal(t, 1, st.CycleCount)
	assert.Len(t, batches.batches, 3)
}

func TestGenerateBatch_CriticalCursorIndependent(t *testing.T) {
	lister := newFakeLister(45, 3) // 15 khách cờ đỏ
	s, states, _ := newService(t, lister)
	ctx := context.Background()

	_, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	routineBefore := *states.docs["amina/routine"]

	critical, err := s.GenerateBatch(ctx, "amina", batchmodels.KindCritical, amina)
	require.NoError(t, err)
	assert.Len(t, critical.Batch.Entries, 15)
	for _, e := range critical.Batch.Entries {
		assert.Contains(t, expected(lister, 0, 3, 6, 9, 12, 15, 18, 21, 24, 27, 30, 33, 36, 39, 42), e.MouNumber)
	}
	assert.Equal(t, 1, critical.Batch.Cycle, "15 khách < page 20 nên một batch là một vòng")

	assert.Equal(t, routineBefore, *states.docs["amina/routine"], "batch critical không đụng con trỏ routine")
	assert.Equal(t, 0, states.docs["amina/critical"].LastBatchOffset)
}

func TestGenerateBatch_EmptyIsNotAnError(t *testing.T) {
	s, states, batches := newService(t, &fakeLister{})

	res, err := s.GenerateBatch(context.Background(), "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Nil(t, res.Batch)
	assert.Empty(t, states.docs, "danh sách rỗng không tạo state")
	assert.Empty(t, batches.batches)
}

func TestGenerateBatch_ConcurrentCallLosesCAS(t *testing.T) {
	lister := newFakeLister(45, 0)
	s, states, batches := newService(t, lister)
	ctx := context.Background()

	_, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)

	// Một lời gọi khác ghi state giữa lúc đọc và lúc CAS
	states.beforeUpdate = func() {
		states.docs["amina/routine"].TotalBatches++
		states.beforeUpdate = nil
	}
	_, err = s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
	assert.Len(t, batches.batches, 1)
}

func TestGenerateBatch_FirstCallRaceOnUpsert(t *testing.T) {
	s, states, _ := newService(t, newFakeLister(5, 0))

	states.beforeUpdate = func() {
		states.docs["amina/routine"] = &batchmodels.BatchState{CssValue: "amina", Kind: "routine", TotalBatches: 1}
		states.beforeUpdate = nil
	}
	_, err := s.GenerateBatch(context.Background(), "amina", batchmodels.KindRoutine, amina)
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestGenerateBatch_InsertFailureRestoresState(t *testing.T) {
	lister := newFakeLister(45, 0)
	s, states, batches := newService(t, lister)
	ctx := context.Background()

	batches.insertErr = errors.New("disk full")
	_, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.Error(t, err)
	assert.Empty(t, states.docs, "state mới tạo bị xoá")

	batches.insertErr = nil
	_, err = s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	before := *states.docs["amina/routine"]

	batches.insertErr = errors.New("disk full")
	_, err = s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.Error(t, err)
	assert.Equal(t, before.LastBatchOffset, states.docs["amina/routine"].LastBatchOffset)
	assert.Equal(t, before.TotalBatches, states.docs["amina/routine"].TotalBatches)
}

func TestGenerateBatch_ListShrankBeyondCursor(t *testing.T) {
	lister := newFakeLister(45, 0)
	s, states, _ := newService(t, lister)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
		require.NoError(t, err)
	}
	require.Equal(t, 40, states.docs["amina/routine"].LastBatchOffset)

	lister.clients = lister.clients[:35]
	res, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.True(t, res.ListChanged)
	assert.Equal(t, 5, res.Batch.StartOffset, "40 mod 35")
	assert.Equal(t, 0, res.Batch.Cycle, "co danh sách không tính là một vòng")
}

func TestGenerateBatch_ScopeChecks(t *testing.T) {
	s, _, _ := newService(t, newFakeLister(5, 0))
	ctx := context.Background()

	_, err := s.GenerateBatch(ctx, "amina", "weekly", amina)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, basesvc.Actor{Name: "bilal"})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, basesvc.Actor{Name: "boss", IsAdmin: true})
	assert.NoError(t, err)
}

func TestStats_PreviewDoesNotAdvance(t *testing.T) {
	s, states, _ := newService(t, newFakeLister(45, 0))
	ctx := context.Background()

	_, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)

	stats, err := s.Stats(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	assert.Equal(t, rotation.Stats{TotalClients: 45, NextBatchCount: 20, RemainingUntilWrap: 25, TotalBatches: 1}, *stats)
	assert.Equal(t, 20, states.docs["amina/routine"].LastBatchOffset)
}

func TestRecordEntryMedium(t *testing.T) {
	lister := newFakeLister(3, 0)
	s, _, batches := newService(t, lister)
	ctx := context.Background()

	res, err := s.GenerateBatch(ctx, "amina", batchmodels.KindRoutine, amina)
	require.NoError(t, err)
	clientID := res.Batch.Entries[1].ClientID

	_, err = s.RecordEntryMedium(ctx, res.Batch.ID, clientID, "whatsapp", amina)
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", batches.lastSet["entries.$.medium"])
	assert.Equal(t, "whatsapp", lister.contacts[clientID])

	_, err = s.RecordEntryMedium(ctx, res.Batch.ID, clientID, "call", basesvc.Actor{Name: "bilal"})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
