// Package worker runs one decode loop per stream URL.
//
// A worker owns its repacketizer subprocess and its GPU decoder exclusively;
// nothing is shared between workers and they never synchronize except at the
// final join in the Pool. The loop reads from the elementary-stream pipe with
// an adaptive chunk size, submits each chunk to the decoder, and tightens the
// read size to what the hardware actually consumed per frame so GPU-resident
// buffering stays flat. A transient hardware reset respawns the decoder with
// identical configuration; a closed pipe is the one normal way a worker
// stops.
package worker
