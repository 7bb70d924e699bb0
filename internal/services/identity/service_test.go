package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu sync.Mutex

	createAssistantCalls int
	createThreadCalls    int

	retrieveAssistantErr error
	retrieveThreadErr    error
	createAssistantErr   error
	createThreadErr      error
}

func (f *fakeClient) CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createAssistantErr != nil {
		return openai.Assistant{}, f.createAssistantErr
	}
	f.createAssistantCalls++
	return openai.Assistant{ID: fmt.Sprintf("asst_%d", f.createAssistantCalls)}, nil
}

func (f *fakeClient) RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveAssistantErr != nil {
		return openai.Assistant{}, f.retrieveAssistantErr
	}
	return openai.Assistant{ID: assistantID}, nil
}

func (f *fakeClient) CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createThreadErr != nil {
		return openai.Thread{}, f.createThreadErr
	}
	f.createThreadCalls++
	return openai.Thread{ID: fmt.Sprintf("thread_%d", f.createThreadCalls)}, nil
}

func (f *fakeClient) RetrieveThread(ctx context.Context, threadID string) (openai.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveThreadErr != nil {
		return openai.Thread{}, f.retrieveThreadErr
	}
	return openai.Thread{ID: threadID}, nil
}

type failingStore struct {
	*MemoryStore
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, scope string, id Identity) error {
	return f.saveErr
}

func TestResolveCreatesWhenEmpty(t *testing.T) {
	client := &fakeClient{}
	store := NewMemoryStore()
	service := NewService(client, store)

	id, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "asst_1", id.AssistantID)
	assert.Equal(t, "thread_1", id.ThreadID)
	assert.Equal(t, 1, client.createAssistantCalls)
	assert.Equal(t, 1, client.createThreadCalls)

	persisted, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, id, *persisted)
}

func TestResolveKeepsVerifiedIdentity(t *testing.T) {
	client := &fakeClient{}
	store := NewMemoryStore()
	seeded := Identity{AssistantID: "asst_keep", ThreadID: "thread_keep"}
	require.NoError(t, store.Save(context.Background(), "sess-1", seeded))

	service := NewService(client, store)
	id, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, seeded, id)
	assert.Equal(t, 0, client.createAssistantCalls)
	assert.Equal(t, 0, client.createThreadCalls)
}

func TestResolveReplacesRejectedAssistant(t *testing.T) {
	client := &fakeClient{retrieveAssistantErr: errors.New("no assistant found")}
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "sess-1", Identity{
		AssistantID: "asst_stale",
		ThreadID:    "thread_keep",
	}))

	service := NewService(client, store)
	id, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "asst_1", id.AssistantID)
	assert.Equal(t, "thread_keep", id.ThreadID)
	assert.Equal(t, 1, client.createAssistantCalls)
	assert.Equal(t, 0, client.createThreadCalls)

	persisted, _ := store.Load(context.Background(), "sess-1")
	require.NotNil(t, persisted)
	assert.Equal(t, "asst_1", persisted.AssistantID)
}

func TestResolveReplacesRejectedThread(t *testing.T) {
	client := &fakeClient{retrieveThreadErr: errors.New("no thread found")}
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "sess-1", Identity{
		AssistantID: "asst_keep",
		ThreadID:    "thread_stale",
	}))

	service := NewService(client, store)
	id, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "asst_keep", id.AssistantID)
	assert.Equal(t, "thread_1", id.ThreadID)
	assert.Equal(t, 0, client.createAssistantCalls)
	assert.Equal(t, 1, client.createThreadCalls)
}

func TestResolveCreateAssistantFailure(t *testing.T) {
	client := &fakeClient{createAssistantErr: errors.New("rate limited")}
	store := NewMemoryStore()
	service := NewService(client, store)

	_, err := service.Resolve(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create assistant")

	persisted, _ := store.Load(context.Background(), "sess-1")
	assert.Nil(t, persisted)
}

func TestResolvePersistFailureIsNotFatal(t *testing.T) {
	client := &fakeClient{}
	store := &failingStore{MemoryStore: NewMemoryStore(), saveErr: errors.New("disk full")}
	service := NewService(client, store)

	id, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "asst_1", id.AssistantID)
	assert.Equal(t, "thread_1", id.ThreadID)
}

func TestResolveSerializesScope(t *testing.T) {
	client := &fakeClient{}
	store := NewMemoryStore()
	service := NewService(client, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Resolve(context.Background(), "sess-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.createAssistantCalls)
	assert.Equal(t, 1, client.createThreadCalls)
}

func TestResolveReleasesScopeLocks(t *testing.T) {
	client := &fakeClient{}
	service := NewService(client, NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.Resolve(context.Background(), fmt.Sprintf("sess-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	service.mu.Lock()
	defer service.mu.Unlock()
	assert.Empty(t, service.scopes, "lock table should be empty once resolves finish")
}

func TestResolveScopesAreIndependent(t *testing.T) {
	client := &fakeClient{}
	store := NewMemoryStore()
	service := NewService(client, store)

	first, err := service.Resolve(context.Background(), "sess-1")
	require.NoError(t, err)
	second, err := service.Resolve(context.Background(), "sess-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, 2, client.createAssistantCalls)
	assert.Equal(t, 2, client.createThreadCalls)
}
