package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
)

type fakeMessages struct {
	reqs []*larkim.CreateMessageReq
	resp *larkim.CreateMessageResp
	err  error
}

func (f *fakeMessages) Create(ctx context.Context, req *larkim.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.CreateMessageResp, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	id := "om_1"
	return &larkim.CreateMessageResp{Data: &larkim.CreateMessageRespData{MessageId: &id}}, nil
}

func messageText(t *testing.T, req *larkim.CreateMessageReq) string {
	t.Helper()
	require.NotNil(t, req.Body)
	require.NotNil(t, req.Body.Content)
	var content map[string]string
	require.NoError(t, json.Unmarshal([]byte(*req.Body.Content), &content))
	return content["text"]
}

func TestNotifier_NotifyApprover(t *testing.T) {
	fake := &fakeMessages{}
	n := newNotifier(fake, "https://portal.example.com/", zap.NewNop())

	err := n.NotifyApprover(context.Background(), port.ApproverNotification{
		RequestID:     "r1",
		RequestType:   "leave",
		Title:         "Congés annuels",
		RequesterName: "John Doe",
		StepName:      "Manager",
		ApproverEmail: "sophie.martin@example.com",
	})
	require.NoError(t, err)
	require.Len(t, fake.reqs, 1)

	body := fake.reqs[0].Body
	assert.Equal(t, "sophie.martin@example.com", *body.ReceiveId)
	assert.Equal(t, msgTypeText, *body.MsgType)

	text := messageText(t, fake.reqs[0])
	assert.Contains(t, text, "John Doe requests your approval (Manager)")
	assert.Contains(t, text, "https://portal.example.com/requests/r1")
}

func TestNotifier_NotifyRequester(t *testing.T) {
	fake := &fakeMessages{}
	n := newNotifier(fake, "", zap.NewNop())

	err := n.NotifyRequester(context.Background(), port.OutcomeNotification{
		RequestID:      "r1",
		Title:          "Formation Go",
		Status:         "rejected",
		Comment:        "budget épuisé",
		RequesterEmail: "john.doe@example.com",
	})
	require.NoError(t, err)

	text := messageText(t, fake.reqs[0])
	assert.Contains(t, text, `"Formation Go" was rejected`)
	assert.Contains(t, text, "Comment: budget épuisé")
	assert.NotContains(t, text, "/requests/")
}

func TestNotifier_Failures(t *testing.T) {
	ctx := context.Background()

	n := newNotifier(&fakeMessages{}, "", zap.NewNop())
	assert.Error(t, n.NotifyRequester(ctx, port.OutcomeNotification{Title: "x"}), "missing email")

	n = newNotifier(&fakeMessages{err: errors.New("network down")}, "", zap.NewNop())
	assert.ErrorContains(t, n.NotifyApprover(ctx, port.ApproverNotification{ApproverEmail: "a@b.c"}), "network down")

	failing := &larkim.CreateMessageResp{CodeError: larkcore.CodeError{Code: 230001, Msg: "invalid receive_id"}}
	n = newNotifier(&fakeMessages{resp: failing}, "", zap.NewNop())
	assert.ErrorContains(t, n.NotifyApprover(ctx, port.ApproverNotification{ApproverEmail: "a@b.c"}), "code=230001")
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{AppID: "cli_x"}.Enabled())
	assert.True(t, Config{AppID: "cli_x", AppSecret: "s"}.Enabled())
}
