// Package discuss retrieves discussion records and their transcripts from a
// remote discussion-recording service.
//
// The package is organized around three pieces:
//
//   - Directory: lists discussions, filtered by state or capped by count
//   - Fetcher: resolves discussion ids to transcript text, batching requests
//   - FormatDuration: renders elapsed seconds as hours, minutes and seconds
//
// Both Directory and Fetcher take the remote service as a constructor
// argument, so any implementation of Lister / TranscriptGetter can be used.
// The hylable subpackage provides the REST client for Hylable Discussion.
//
// # Quick Start
//
//	client, err := hylable.NewClient(cfg)
//	if err != nil {
//	    return err
//	}
//
//	dir := discuss.NewDirectory(client)
//	ids, err := dir.RecordingDiscussionIDs(ctx)
//
//	fetcher := discuss.NewFetcher(client)
//	batch, err := fetcher.DiscussionTexts(ctx, ids)
//	for _, r := range batch.Results {
//	    if r.Err != nil {
//	        continue // unknown id, siblings are unaffected
//	    }
//	    fmt.Println(r.ID, r.Text)
//	}
//
// # Error Handling
//
// Local validation fails with ErrInvalidArgument before any remote call.
// Unknown ids report ErrDiscussionNotFound. Everything else coming from the
// remote service is wrapped in *RemoteError and can be inspected with
// errors.Is / errors.As:
//
//	if errors.Is(err, discuss.ErrDiscussionNotFound) {
//	    // id does not exist
//	}
//
// A transcript that has not been generated yet is not an error; it is
// returned as the empty string.
package discuss
