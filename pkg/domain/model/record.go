package model

// EventRecord is the normalized form of a supported GitHub event.
// It is implemented by PullRequestRecord, PushRecord and ReleaseRecord only.
type EventRecord interface {
	Kind() EventKind
	eventRecord()
}

// PullRequestRecord is the normalized pull_request event.
// Nil fields were absent in the source payload.
type PullRequestRecord struct {
	Action     *string `json:"action,omitempty"`
	Number     *int    `json:"number,omitempty"`
	Title      *string `json:"title,omitempty"`
	Body       *string `json:"body,omitempty"`
	Author     *string `json:"author,omitempty"`
	Merged     *bool   `json:"merged,omitempty"`
	Repository *string `json:"repository,omitempty"`
}

// PushRecord is the normalized push event
type PushRecord struct {
	Ref        *string        `json:"ref,omitempty"`
	Repository *string        `json:"repository,omitempty"`
	Pusher     *string        `json:"pusher,omitempty"`
	Commits    []CommitRecord `json:"commits"` // never nil, source order
}

// CommitRecord is one commit of a push event
type CommitRecord struct {
	ID      *string `json:"id,omitempty"`
	Message *string `json:"message,omitempty"`
	Author  *string `json:"author,omitempty"`
}

// ReleaseRecord is the normalized release event
type ReleaseRecord struct {
	Action     *string `json:"action,omitempty"`
	TagName    *string `json:"tag_name,omitempty"`
	Name       *string `json:"name,omitempty"`
	Author     *string `json:"author,omitempty"`
	Repository *string `json:"repository,omitempty"`
	Body       *string `json:"body,omitempty"`
}

func (*PullRequestRecord) Kind() EventKind { return EventKindPullRequest }
func (*PushRecord) Kind() EventKind        { return EventKindPush }
func (*ReleaseRecord) Kind() EventKind     { return EventKindRelease }

func (*PullRequestRecord) eventRecord() {}
func (*PushRecord) eventRecord()        {}
func (*ReleaseRecord) eventRecord()     {}
