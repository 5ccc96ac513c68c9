package worker

import "context"

// SwipeSubmitter posts a finished session's decisions to the quiz API.
// It lives here rather than in services to avoid an import cycle.
type SwipeSubmitter interface {
	SubmitSession(ctx context.Context, sessionID string) error
}

// SubmitSwipesJob delivers one exhausted deck's outcome lists.
type SubmitSwipesJob struct {
	Submitter SwipeSubmitter
	SessionID string
}

func (j *SubmitSwipesJob) Name() string { return "submit_swipes" }

func (j *SubmitSwipesJob) Run(ctx context.Context) error {
	return j.Submitter.SubmitSession(ctx, j.SessionID)
}
