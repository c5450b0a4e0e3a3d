package emailsvc

import (
	"sync"

	"github.com/trezcool/darasa/core"
)

// mockService records rendered messages for inspection in tests.
type mockService struct {
	conf *core.Config

	mu           sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*mockService)(nil)

func NewMockService(conf *core.Config) *mockService {
	return &mockService{conf: conf}
}

func (svc *mockService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(svc.conf); err != nil {
			continue
		}
		svc.mu.Lock()
		svc.SentMessages = append(svc.SentMessages, *msg)
		svc.mu.Unlock()
	}
}

func (svc *mockService) Sent() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]core.EmailMessage, len(svc.SentMessages))
	copy(sent, svc.SentMessages)
	return sent
}

func (svc *mockService) Reset() {
	svc.mu.Lock()
	svc.SentMessages = nil
	svc.mu.Unlock()
}
