// Package tgui provides small Telegram UI helpers:
//   - Inline and reply keyboard builders
//   - Grid layouts (including the 24-hour start-time picker)
//
// Design goals:
//   - Ergonomic for handlers (one builder covers a whole keyboard)
//   - Callback data is carried raw, so token grammars stay in one place
package tgui
