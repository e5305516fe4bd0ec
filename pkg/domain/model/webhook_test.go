package model_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestEventKind_IsSupported(t *testing.T) {
	tests := []struct {
		name     string
		kind     model.EventKind
		expected bool
	}{
		{name: "pull_request", kind: model.EventKindPullRequest, expected: true},
		{name: "push", kind: model.EventKindPush, expected: true},
		{name: "release", kind: model.EventKindRelease, expected: true},
		{name: "issues", kind: model.EventKind("issues"), expected: false},
		{name: "ping", kind: model.EventKind("ping"), expected: false},
		{name: "empty", kind: model.EventKind(""), expected: false},
		{name: "case sensitive", kind: model.EventKind("Push"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.kind.IsSupported()).Equal(tt.expected)
		})
	}
}

func TestEventRecord_Kind(t *testing.T) {
	records := map[model.EventKind]model.EventRecord{
		model.EventKindPullRequest: &model.PullRequestRecord{},
		model.EventKindPush:        &model.PushRecord{},
		model.EventKindRelease:     &model.ReleaseRecord{},
	}

	for kind, rec := range records {
		gt.Value(t, rec.Kind()).Equal(kind)
	}
}

func TestEnvelope_Reply(t *testing.T) {
	t.Run("calls response handler", func(t *testing.T) {
		var got *model.ConsumerResponse
		env := &model.Envelope{
			Respond: func(ctx context.Context, resp *model.ConsumerResponse) {
				got = resp
			},
		}

		env.Reply(context.Background(), &model.ConsumerResponse{Consumer: "log", Status: "ok"})
		gt.Value(t, got).NotNil()
		gt.Value(t, got.Status).Equal("ok")
	})

	t.Run("no handler attached", func(t *testing.T) {
		env := &model.Envelope{}
		env.Reply(context.Background(), &model.ConsumerResponse{Status: "ok"})

		var nilEnv *model.Envelope
		nilEnv.Reply(context.Background(), &model.ConsumerResponse{Status: "ok"})
	})
}
