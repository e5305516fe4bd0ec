package usecase

import (
	"encoding/json"
	"errors"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Normalize converts a raw payload into the record of its event kind.
//
// The kind comes from the X-GitHub-Event header and is checked before the body
// is decoded. Unsupported kinds return (nil, nil). Missing fields, at any
// depth, are left nil in the record. Only a body that is not valid JSON is an
// error.
func Normalize(kind model.EventKind, payload []byte) (model.EventRecord, error) {
	switch kind {
	case model.EventKindPullRequest:
		var ev github.PullRequestEvent
		if err := decodePayload(kind, payload, &ev); err != nil {
			return nil, err
		}
		return normalizePullRequest(&ev), nil

	case model.EventKindPush:
		var ev github.PushEvent
		if err := decodePayload(kind, payload, &ev); err != nil {
			return nil, err
		}
		return normalizePush(&ev), nil

	case model.EventKindRelease:
		var ev github.ReleaseEvent
		if err := decodePayload(kind, payload, &ev); err != nil {
			return nil, err
		}
		return normalizeRelease(&ev), nil

	default:
		return nil, nil
	}
}

func decodePayload(kind model.EventKind, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return goerr.Wrap(err, "payload does not match event schema",
				goerr.V("event_kind", kind),
				goerr.V("field", typeErr.Field),
				goerr.T(ErrTagInvalidPayload),
			)
		}
		return goerr.Wrap(err, "failed to decode webhook payload",
			goerr.V("event_kind", kind),
			goerr.T(ErrTagInvalidPayload),
		)
	}
	return nil
}

func normalizePullRequest(ev *github.PullRequestEvent) *model.PullRequestRecord {
	rec := &model.PullRequestRecord{
		Action: ev.Action,
		Number: ev.Number,
	}

	if pr := ev.PullRequest; pr != nil {
		rec.Title = pr.Title
		rec.Body = pr.Body
		rec.Merged = pr.Merged
		if pr.User != nil {
			rec.Author = pr.User.Login
		}
	}
	if ev.Repo != nil {
		rec.Repository = ev.Repo.FullName
	}

	return rec
}

func normalizePush(ev *github.PushEvent) *model.PushRecord {
	rec := &model.PushRecord{
		Ref:     ev.Ref,
		Commits: make([]model.CommitRecord, 0, len(ev.Commits)),
	}

	if ev.Repo != nil {
		rec.Repository = ev.Repo.FullName
	}
	if ev.Pusher != nil {
		rec.Pusher = ev.Pusher.Name
	}

	for _, c := range ev.Commits {
		if c == nil {
			rec.Commits = append(rec.Commits, model.CommitRecord{})
			continue
		}
		commit := model.CommitRecord{
			ID:      c.ID,
			Message: c.Message,
		}
		if c.Author != nil {
			commit.Author = c.Author.Name
		}
		rec.Commits = append(rec.Commits, commit)
	}

	return rec
}

func normalizeRelease(ev *github.ReleaseEvent) *model.ReleaseRecord {
	rec := &model.ReleaseRecord{
		Action: ev.Action,
	}

	if r := ev.Release; r != nil {
		rec.TagName = r.TagName
		rec.Name = r.Name
		rec.Body = r.Body
		if r.Author != nil {
			rec.Author = r.Author.Login
		}
	}
	if ev.Repo != nil {
		rec.Repository = ev.Repo.FullName
	}

	return rec
}
