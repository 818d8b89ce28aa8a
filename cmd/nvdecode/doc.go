// Command nvdecode decodes multiple live streams in parallel on one NVIDIA
// GPU. Each URL gets its own ffmpeg repacketizer subprocess and its own NVDEC
// decoder session; the process exits once every stream has ended.
//
//	nvdecode <gpu_id> <url_1> [url_2 ...]
package main
