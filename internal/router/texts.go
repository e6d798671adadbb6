package router

// Reply-keyboard labels. Matching these takes priority over session state,
// so a user can always reach the menu even from the middle of a dialog.
const (
	labelSendMessage = "📨 Send message"
	labelMyGroups    = "👥 My groups"
	labelProfile     = "👤 My profile"
	labelSettings    = "⚙️ Settings"
	labelHelp        = "❓ Help"
	labelLogout      = "🚪 Logout"
)

const (
	textAskLogin    = "Welcome! Please enter your login:"
	textAskPassword = "Now enter your password:"
	textBadPassword = "❌ Wrong password. Please enter your login again:"
	textLoginTaken  = "❌ This login is already in use. Please enter a different login:"

	textMainMenu     = "Choose an action from the menu below."
	textPleaseStart  = "Please log in first: send /start"
	textUseMenu      = "Use the menu buttons below, or /help."
	textSessionReset = "You have been logged out. Send /start to log in again."

	textHelp = `This bot relays your messages to every group you manage.

Add the bot to a group and promote it to administrator — the group joins your list automatically.

` + labelSendMessage + ` — broadcast a message to all your groups
` + labelMyGroups + ` — browse, inspect and remove groups
` + labelSettings + ` — default message and automatic schedule
` + labelLogout + ` — delete your account and leave all groups`

	textSendMenu     = "What would you like to send?"
	textSettingsMenu = "Settings:"

	textAskCustomMessage  = "Send the message (text, or a photo with a caption) to broadcast to all your groups:"
	textAskDefaultMessage = "Send the new default message (text, or a photo with a caption). It will be used for scheduled broadcasts:"
	textDefaultSaved      = "✅ Default message saved."

	textNoGroups = "You have no groups yet. Add the bot to a group and make it an administrator."

	textChooseInterval = "How often should the default message be sent?"
	textChooseHour     = "Pick the hour of the first daily send (bot time zone):"

	textLogoutConfirm   = "Log out? Your account will be deleted and the bot will leave all your groups."
	textLogoutCancelled = "Logout cancelled."

	textGroupsHeader = "Your groups (tap for details):"

	textUnknownAction = "This button is no longer valid."
)
