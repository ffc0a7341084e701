// Package models defines the entities of an article-to-post project.
//
// The package contains three groups of types:
//
// 1. Content produced by the backend
//   - [ArticleData] : Processed article identity, title and summary
//   - [BulletPoint] : One key point with its keywords and optional image
//   - [SlideItem] : One slide of the generated deck, keyed by a client-generated id
//   - [SocialPost] : A generated caption with hashtags and call to action for one [Platform]
//
// 2. User choices
//   - [ProjectSettings] : Language, slide count and words per point, clamped on write
//   - [CustomizationSettings] : Video options (voiceover, music, durations)
//   - [MusicItem] and [VoiceOption] : Selected media
//
// 3. The aggregate
//   - [ProjectState] : Everything above plus the current [Step]. The store owns it and hands out
//     clones, so callers never mutate shared slices.
//
// [BulletPointPatch] and [SlidePatch] express partial updates: nil fields are left untouched.
package models
