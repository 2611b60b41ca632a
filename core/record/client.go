package record

import "context"

type (
	// Query narrows record reads. Filter and Sort use the backend's filter
	// language verbatim; Expand names relation fields to inline.
	Query struct {
		Filter  string
		Sort    string
		Expand  string
		Page    int
		PerPage int
	}

	// AuthData is the result of a successful password authentication.
	AuthData struct {
		Token string `json:"token"`
		User  User   `json:"record"`
	}

	// Client is the hosted record/auth/file service the app delegates all
	// persistence to.
	Client interface {
		// AuthWithPassword authenticates against the users collection and,
		// on success, installs the resulting token and model into AuthStore.
		AuthWithPassword(ctx context.Context, identity, password string) (AuthData, error)
		// GetRecord fetches a single record into dst (a record struct pointer).
		GetRecord(ctx context.Context, collection, id string, q Query, dst interface{}) error
		// ListRecords fetches one page of records into dst (a slice pointer).
		ListRecords(ctx context.Context, collection string, q Query, dst interface{}) error
		CreateRecord(ctx context.Context, collection string, body, dst interface{}) error
		UpdateRecord(ctx context.Context, collection, id string, body, dst interface{}) error
		DeleteRecord(ctx context.Context, collection, id string) error
		// FileURL builds the absolute URL of a file carried by a record.
		// thumb is an optional "WxH" spec for image resizing.
		FileURL(collection, recordID, filename, thumb string) string
		AuthStore() *AuthStore
	}
)
