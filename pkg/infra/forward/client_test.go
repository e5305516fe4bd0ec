package forward_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/infra/forward"
	"github.com/m-mizutani/ghtrigger/pkg/utils/signature"
	"github.com/m-mizutani/gt"
)

func testEnvelope(respond model.ResponseHandler) *model.Envelope {
	return &model.Envelope{
		ID:          "github-release-d1",
		Origin:      model.OriginGitHubWebhook,
		Content:     `{"action":"published","tag_name":"v1.0"}`,
		Instruction: "hint",
		Platform:    model.PlatformGitHub,
		Metadata: model.EnvelopeMetadata{
			DeliveryID: "d1",
			EventKind:  model.EventKindRelease,
			Payload:    json.RawMessage(`{"action":"published"}`),
		},
		Respond: respond,
	}
}

func TestClient_Consume(t *testing.T) {
	secret := "forward-secret"
	type captured struct {
		body []byte
		sig  string
		id   string
	}
	reqCh := make(chan captured, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqCh <- captured{
			body: body,
			sig:  r.Header.Get(forward.HeaderSignature),
			id:   r.Header.Get(forward.HeaderEnvelopeID),
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	}))
	defer server.Close()

	client, err := forward.New(server.URL, forward.WithSecret(secret))
	gt.NoError(t, err)
	gt.Value(t, client.Name()).Equal("http")

	var resp *model.ConsumerResponse
	env := testEnvelope(func(ctx context.Context, r *model.ConsumerResponse) { resp = r })

	gt.NoError(t, client.Consume(context.Background(), env))

	got := <-reqCh
	gotBody := got.body
	gt.Value(t, got.id).Equal("github-release-d1")
	gt.True(t, signature.Verify(gotBody, secret, got.sig))

	var forwarded model.Envelope
	gt.NoError(t, json.Unmarshal(gotBody, &forwarded))
	gt.Value(t, forwarded.ID).Equal(env.ID)
	gt.Value(t, forwarded.Content).Equal(env.Content)
	gt.Value(t, forwarded.Metadata.EventKind).Equal(model.EventKindRelease)

	gt.Value(t, resp).NotNil()
	gt.Value(t, resp.Status).Equal("202")
	gt.Value(t, resp.Message).Equal("queued")
}

func TestClient_ConsumeUnsigned(t *testing.T) {
	sigCh := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sigCh <- r.Header.Get(forward.HeaderSignature)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := forward.New(server.URL)
	gt.NoError(t, err)
	gt.NoError(t, client.Consume(context.Background(), testEnvelope(nil)))
	gt.Value(t, <-sigCh).Equal("")
}

func TestClient_ConsumeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := forward.New(server.URL)
	gt.NoError(t, err)

	replied := false
	err = client.Consume(context.Background(), testEnvelope(func(ctx context.Context, r *model.ConsumerResponse) {
		replied = true
	}))
	gt.Error(t, err)
	gt.False(t, replied)
}

func TestClient_ConsumeHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := forward.New(server.URL)
	gt.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	gt.Error(t, client.Consume(ctx, testEnvelope(nil)))
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := forward.New("")
	gt.Error(t, err)
}
