// Package ui implements the interactive wizard using bubbletea's Elm architecture.
//
// The shell ([Model]) renders the step chosen by the project's current step, a sidebar with
// every step and a status line. Each step is a sub-model:
//  1. article input: URL or text plus generation settings
//  2. bullet points: review, edit and regenerate
//  3. slide preview: generated in the background on entry, then edited per slide
//  4. logo and 5. frame: optional branding, gated on slides having images
//  6. social posts: platform selection, generation with polling, copy and download
//
// Operations run in goroutines; their [tasks.ProgressUpdate] values flow back through a channel,
// one message at a time, like every other long-running command in the program. The store is
// observed through a subscription, so changes made by an operation are picked up without polling.
//
// Global keys: ] and [ move between steps, t toggles the light/dark theme (persisted), N starts
// a new project, ? shows all bindings, q quits. Single letter keys are passed to text inputs while
// one is focused.
package ui
