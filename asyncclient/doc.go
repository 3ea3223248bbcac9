// Package asyncclient implements the client side of the box-office
// asynchronous task contract. A submission is posted with an
// asynchronous-mode marker; the server either answers with a final
// redirect or with a task handle, which the client polls until the
// task reports ready. Waiting and error presentation is delegated to
// a caller-supplied Presenter, navigation to a Navigator, and timing
// to an injectable Scheduler so the loop is testable without
// wall-clock delays.
package asyncclient
