// Package tasks coordinates the wizard steps between the project store and the backend with
// real-time progress reporting.
//
// # Core Operations
//
// [Wizard] implements [Coordinator] and owns one operation per step:
//
//  1. [Wizard.SubmitArticle] : Article input
//     - Accepts exactly one of a URL or raw text
//     - Stores the article and its bullet points in a single write
//     - [Wizard.AutoAdvance] moves on after a short delay unless the project was reset
//
//  2. [Wizard.EditBulletPoint], [Wizard.RegenerateBulletPoint], [Wizard.RegenerateAllBulletPoints]
//     - Regenerating the whole list clears the slides built from it
//
//  3. [Wizard.GenerateSlides] : Slide preview
//     - One job per bullet point through a bounded, rate limited worker pool
//     - Existing images are reused; failed generations fall back to a placeholder
//     - Slides are written once, after every job resolved
//
//  4. [Wizard.ApplyLogo], [Wizard.ApplyFrame] : Branding
//     - Refused locally until a bullet point has an image
//     - Rewrites every .jpg image to the composited file and bumps the asset version
//
//  5. [Wizard.GenerateSocialPosts] : Social posts
//     - Starts a backend job and polls it under a [PollPolicy]
//     - Completed jobs are handed to the optional [PostArchiver]
//
// # Progress Reporting
//
// Long operations accept a ProgressUpdate channel. Sends use select with default so a slow or
// absent reader never blocks the operation; pass nil to disable reporting.
//
// # Stale Writes
//
// Each operation captures the store epoch before calling the backend. If the project is reset
// while the call is in flight, the result is dropped and the operation returns
// shared.ErrStaleWrite.
package tasks
