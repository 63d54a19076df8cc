package registration

// Repo keeps in-progress workflows between HTTP requests, keyed by browser session id
type Repo interface {
	Upsert(sessionID string, w *Workflow) error
	Get(sessionID string) (*Workflow, error)
	Delete(sessionID string) error
}
