package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/led-sequencer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	// percent of full scale, for the level bars
	"pct": func(v uint8) int {
		return int(v) * 100 / 255
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>LED Sequencer</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 30%; }
.state { font-weight: bold; color: #a0f; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.bar { display: inline-block; height: 8px; background: #fa0; vertical-align: middle; }
</style>
</head>
<body>
<h1>LED Sequencer</h1>

<h2>Show</h2>
<table>
<tr><th>State</th><td id="state" class="state">{{orUnknown .State}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
<tr><th>Lifecycle</th><td>{{orUnknown .Lifecycle}}</td></tr>
</table>

<h2>Channels</h2>
<table>
<tr><th>Name</th><th>Effect</th><th>Level</th></tr>
{{range .Channels}}<tr><td>{{.Name}} ({{.Output}})</td>{{if .Kind}}<td>{{.Kind}} @ {{.Brightness}}</td><td><span class="bar" style="width: {{pct .Level}}px"></span> {{.Level}}</td>{{else}}<td class="off">off</td><td class="off">0</td>{{end}}</tr>
{{end}}</table>

<h2>Counters</h2>
<table>
<tr><th>Triggers</th><td>{{.Machine.Triggers}}</td></tr>
<tr><th>Transitions</th><td>{{.Machine.Transitions}}</td></tr>
<tr><th>Ignored</th><td>{{.Machine.Ignored}}</td></tr>
<tr><th>Queued</th><td>{{.Machine.Queued}}</td></tr>
<tr><th>Button presses</th><td>{{.Buttons.Presses}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Queued messages</th><td>{{.MQTTBuffered}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Run</th><td>{{.RunID}}</td></tr>
<tr><th>Show</th><td>{{.Config.Show}}</td></tr>
<tr><th>Sink</th><td>{{.Config.Sink}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Uptime and Ready are methods on Snapshot; give the template fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	indexTmpl.Execute(w, data)
}
