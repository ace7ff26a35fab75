package bot

// User-visible texts. Failures always read as a polite retry
// instruction; raw error detail never reaches the chat.
const (
	msgWelcome = "Welcome! I can help you find your room code. Pick an area below to get started."

	msgChooseKey  = "Please choose an area:"
	msgChooseOpt1 = "Please choose a district:"
	msgChooseOpt2 = "Please choose an address:"

	msgNoInformation = "Sorry, there is no information for that selection yet."
	msgNotFound      = "That option is no longer available, the data may have been updated. Please start over with /start."

	msgThrottled = "You're sending requests a little too fast. Please wait a moment and try again."
	msgBusy      = "I'm still working on your previous request. Please wait for it to finish."
	msgTimeout   = "That took longer than expected. Please try again."

	msgRestartDone = "Your session was reset. Send /start to begin again."

	msgTerminalFmt      = "Here is your code: %s"
	msgGrantTempFmt     = "You've been given access to the residents' group for the next %d minutes."
	msgGrantKept        = "You already have access to the residents' group."
	msgGrantFailed      = "I couldn't add you to the residents' group right now."
	msgGrantInviteFmt   = "I couldn't add you directly, but you can join here: %s"
	msgUnsupportedPress = "Unsupported action"
)
