// Copyright 2025, Clipwise, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the video ingestion
// pipeline. This file defines the shared context parameter names the
// commands use to exchange data beyond the default input/output piping.
package commands

// Context parameter names shared across the ingestion commands. The primary
// data flow rides the chain's CtxIn/CtxOut piping; these keys carry the
// values that several commands need regardless of their position in the
// chain.
const (
	ParamVideoFile      = "video_file_path"      // Absolute path of the source video.
	ParamVideoName      = "video_name"           // Base name of the video, extension stripped.
	ParamCollectionName = "collection_name"      // Vector collection receiving the video's points.
	ParamTranscriptFile = "transcript_file_path" // Path of the YAML transcript artifact.
	ParamAudioFile      = "audio_file_path"      // Path of the extracted audio file.
)
