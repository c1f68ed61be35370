// Package hylable provides a client for the Hylable discussion REST API.
//
// The client implements discuss.Service and discuss.BulkTranscriptGetter,
// so it plugs directly into discuss.Directory and discuss.Fetcher.
//
// # Authentication
//
// The client supports three authentication methods:
//   - Static bearer token
//   - OAuth 2.0 client credentials
//   - OAuth 2.0 resource-owner password grant
//
// # Usage
//
//	cfg := hylable.DefaultConfig()
//	cfg.CourseID = "crs_123"
//	cfg.Auth = hylable.AuthConfig{
//		Type:  auth.TypeToken,
//		Token: os.Getenv("HYLABLE_TOKEN"),
//	}
//
//	client, err := hylable.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//
//	dir := discuss.NewDirectory(client)
//	ids, err := dir.RecordingDiscussionIDs(ctx)
//
// # Error Handling
//
// Unknown discussions return errors matching discuss.ErrDiscussionNotFound.
// Other failures carry the http package sentinels:
//
//	if errors.Is(err, http.ErrRateLimited) {
//		// Rate limited, check Retry-After
//	}
package hylable
