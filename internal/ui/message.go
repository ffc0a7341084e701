package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateChanged MsgKind = iota
	MsgProgressUpdate
	MsgOpDone
	MsgAutoAdvanced
	MsgNotice
)

// op names a background operation started by a step view.
type op string

const (
	opSubmitArticle  op = "submit_article"
	opEditBullet     op = "edit_bullet"
	opRegenBullet    op = "regenerate_bullet"
	opRegenAll       op = "regenerate_all"
	opGenerateSlides op = "generate_slides"
	opRegenSlide     op = "regenerate_slide"
	opUploadSlide    op = "upload_slide"
	opCurrentAsset   op = "current_asset"
	opUploadAsset    op = "upload_asset"
	opApplyAsset     op = "apply_asset"
	opRemoveAsset    op = "remove_asset"
	opGenerateSocial op = "generate_social"
	opDownloadImage  op = "download_image"
	opNewProject     op = "new_project"
)

type progressData struct {
	update tasks.ProgressUpdate
	ch     <-chan tasks.ProgressUpdate
	done   <-chan Msg
}

type notice struct {
	text  string
	isErr bool
}

type opResult struct {
	op    op
	value any
	err   error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg() Msg {
	return Msg{kind: MsgStateChanged}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate, ch <-chan tasks.ProgressUpdate, done <-chan Msg) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressData{update: update, ch: ch, done: done}}
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(o op, value any, err error) Msg {
	return Msg{kind: MsgOpDone, data: opResult{op: o, value: value, err: err}}
}

// autoAdvancedMsg is the constructor for [MsgAutoAdvanced]
func autoAdvancedMsg(err error) Msg {
	return Msg{kind: MsgAutoAdvanced, data: err}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(text string, isErr bool) Msg {
	return Msg{kind: MsgNotice, data: notice{text: text, isErr: isErr}}
}
