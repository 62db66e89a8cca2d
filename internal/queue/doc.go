// Package queue consumes bucket notification deliveries from SQS.
//
// A Consumer long-polls one queue and hands each delivery's message bodies
// to a Handler. Messages are deleted only after the handler returns nil, so
// a failed delivery reappears after its visibility timeout and is retried.
package queue
