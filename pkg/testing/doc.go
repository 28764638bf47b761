// Package testing provides a testing SDK for using mockserve in Go tests.
//
// A MockServer runs the real request handler against an in-memory store,
// so mocks behave exactly as they do in a deployed mockserve, including the
// POST /mocks and PATCH /mocks endpoints and the fallback response for
// unmatched routes.
//
// # Basic Usage
//
//	func TestMyAPI(t *testing.T) {
//	    mock := testing.New(t)
//
//	    mock.Mock("GET", "/users/123").
//	        WithStatus(200).
//	        WithJSON(map[string]string{"id": "123", "name": "Test User"}).
//	        Reply()
//
//	    url := mock.Start()
//
//	    resp, err := http.Get(url + "/users/123")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer resp.Body.Close()
//
//	    mock.AssertCalled(t, "GET", "/users/123")
//	}
//
// # Response Types
//
//	mock.Mock("GET", "/greeting").WithText("hello").Reply()
//	mock.Mock("GET", "/user").WithJSON(User{ID: "123"}).Reply()
//	mock.Mock("GET", "/report").WithFile("report.pdf", pdfBytes).Reply()
//
// # Assertions
//
//	mock.AssertCalledTimes(t, "POST", "/orders", 3)
//	mock.AssertNotCalled(t, "DELETE", "/orders/{id}")
//
//	for _, req := range mock.Requests() {
//	    req.AssertJSONField(t, "customer.id", "c-1")
//	}
//
// Only JSON request bodies are kept in the request log.
package testing
