package bot

import tele "gopkg.in/telebot.v3"

const (
	btnToday     = "📚 Today's schedule"
	btnTomorrow  = "📅 Tomorrow's schedule"
	btnExport    = "📆 Export to calendar"
	btnCookies   = "🔧 Set cookies"
	btnNotifyOn  = "⏰ Enable notifications"
	btnNotifyOff = "🔕 Disable notifications"
	btnHelp      = "ℹ️ Help"
)

func mainKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnToday), menu.Text(btnTomorrow)),
		menu.Row(menu.Text(btnExport), menu.Text(btnCookies)),
		menu.Row(menu.Text(btnNotifyOn), menu.Text(btnNotifyOff)),
		menu.Row(menu.Text(btnHelp)),
	)
	return menu
}
