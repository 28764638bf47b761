// Package config loads seed files: YAML or JSON documents describing mock
// definitions that are registered when the server starts.
//
// A seed file holds a single definition, a list of definitions, or a
// document with a "mocks" list:
//
//	mocks:
//	  - method: GET
//	    path: /users/1
//	    status: 200
//	    responseType: json
//	    responseData: {id: 1, name: Ada}
//	  - method: GET
//	    path: /health
//	    responseType: text
//	    responseData: ok
//	  - method: GET
//	    path: /report
//	    file: ./fixtures/report.pdf
//
// Field spellings match the POST /mocks JSON body. An entry with "file"
// becomes a file mock whose content is uploaded through the configured file
// storage, exactly like a multipart define. ${VAR} and ${VAR:-default} are
// expanded from the environment before parsing.
package config
