package api

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	SendFunc    func(ctx context.Context, message, sessionID string) (*ChatResponse, error)
	ReserveFunc func(ctx context.Context, slotID, sessionID string, window TimeWindow) (*ReserveResponse, error)
	SlotsFunc   func(ctx context.Context, sessionID, rangeStart, rangeEnd string) ([]WireSlot, error)
}

func (m *MockClient) Send(ctx context.Context, message, sessionID string) (*ChatResponse, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, message, sessionID)
	}
	return &ChatResponse{Reply: "mock reply"}, nil
}

func (m *MockClient) Reserve(ctx context.Context, slotID, sessionID string, window TimeWindow) (*ReserveResponse, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, slotID, sessionID, window)
	}
	return &ReserveResponse{MeetingLink: "https://cal.com/mock"}, nil
}

func (m *MockClient) Slots(ctx context.Context, sessionID, rangeStart, rangeEnd string) ([]WireSlot, error) {
	if m.SlotsFunc != nil {
		return m.SlotsFunc(ctx, sessionID, rangeStart, rangeEnd)
	}
	return nil, nil
}
