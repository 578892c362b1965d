// Package likes keeps a rendered post's "liked" flag and displayed like count in step with the
// posts API.
//
// Each rendered card mounts one Instance. The instance seeds its flag from the viewer's liked-post
// set and its count from the post's embedded count, then reads the authoritative count once. A
// press flips the flag immediately; the remote like/unlike request runs in the background and the
// displayed count moves by exactly one when the request succeeds. Failed requests are logged and
// otherwise ignored: the flag is not rolled back and nothing is retried.
//
// Requests are neither deduplicated nor cancelled. Two quick presses put two requests in flight and
// their completions may land in either order, so the count after a rapid double toggle can end up
// one above or one below where it started. The flag always reflects the last press.
package likes
