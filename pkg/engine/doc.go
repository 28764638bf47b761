// Package engine serves mock definitions over HTTP.
//
// The server exposes three kinds of route:
//
//	GET  /          health probe, {"status":"ok"}
//	POST /mocks     define (create or replace) a mock, JSON or multipart upload
//	PATCH /mocks    update selected fields of an existing mock
//	*    /*         dispatch: answer with the stored definition for the
//	                request's method and path, or a generic "mocked" body
//
// Every request that reaches dispatch is also handed to the request
// recorder. Recording happens in the background and never affects the
// response.
//
// Handlers receive their collaborators through Deps:
//
//	srv := engine.NewServer(engine.Deps{
//		Store:    storage.NewInMemoryMockStore(),
//		Blobs:    blob.New(blob.NewLocalBackend("uploads")),
//		Recorder: rec,
//	}, engine.WithPort(3000), engine.WithLogger(log))
package engine
