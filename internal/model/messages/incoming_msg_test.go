package messages

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	texts   []string
	chatIDs []int64
}

func (f *fakeSender) SendMessage(text string, chatID int64) error {
	f.texts = append(f.texts, text)
	f.chatIDs = append(f.chatIDs, chatID)
	return nil
}

type staticHandler struct {
	resp string
	err  error
}

func (h staticHandler) HandleMessage(context.Context, string, int64) (string, error) {
	return h.resp, h.err
}

func Test_OnIncomingMessage_ShouldSendHandlerResponseBack(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, staticHandler{resp: helloMessage})

	err := svc.HandleIncomingMessage(context.Background(), Message{Text: "/start", ChatID: 42})
	require.NoError(t, err)

	assert.Equal(t, []string{helloMessage}, sender.texts)
	assert.Equal(t, []int64{42}, sender.chatIDs)
}

func Test_OnHandlerFailure_ShouldApologizeAndPropagateError(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, staticHandler{resp: cannotReachDataMessage, err: errors.New("boom")})

	err := svc.HandleIncomingMessage(context.Background(), Message{Text: "/history", ChatID: 42})
	assert.Error(t, err)

	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "Sorry, something wrong happened...")
	assert.Contains(t, sender.texts[0], cannotReachDataMessage)
}
