package analytics

import (
	"html/template"
	"net/http"
)

// dashboard serve uma página mínima que consome os endpoints de métricas.
func (h *Handler) dashboard(w http.ResponseWriter, _ *http.Request) {
	data := struct {
		UserWindowMin     int
		SessionWindowMin  int
		PageviewWindowMin int
	}{h.UserWindowMin, h.SessionWindowMin, h.PageviewWindowMin}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = dashboardTmpl.Execute(w, data)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Event Analytics</title>
<style>
  body { font-family: sans-serif; margin: 2rem; color: #222; }
  .tiles { display: flex; gap: 1rem; flex-wrap: wrap; }
  .tile { border: 1px solid #ccc; border-radius: 6px; padding: 1rem 1.5rem; min-width: 14rem; }
  .tile h2 { margin: 0 0 .5rem; font-size: 1rem; color: #555; }
  .tile .value { font-size: 2rem; }
  table { border-collapse: collapse; margin-top: .5rem; }
  td, th { border-bottom: 1px solid #ddd; padding: .25rem .75rem; text-align: left; }
</style>
</head>
<body>
<h1>Event Analytics</h1>
<div class="tiles">
  <div class="tile">
    <h2>Active users (last {{.UserWindowMin}} min)</h2>
    <div class="value" id="active-users">–</div>
  </div>
  <div class="tile">
    <h2>Top pages (last {{.PageviewWindowMin}} min)</h2>
    <table id="top-pages"><tbody></tbody></table>
  </div>
  <div class="tile">
    <h2>Sessions per user (last {{.SessionWindowMin}} min)</h2>
    <input id="user-id" placeholder="user id">
    <div class="value" id="active-sessions">–</div>
  </div>
</div>
<script>
async function refresh() {
  const au = await (await fetch('/metrics/active_users')).json();
  document.getElementById('active-users').textContent = au.active_users;

  const tp = await (await fetch('/metrics/top_pages')).json();
  const tbody = document.querySelector('#top-pages tbody');
  tbody.innerHTML = '';
  for (const p of tp.top_pages) {
    const tr = document.createElement('tr');
    tr.innerHTML = '<td></td><td></td>';
    tr.children[0].textContent = p.page_url;
    tr.children[1].textContent = p.views;
    tbody.appendChild(tr);
  }

  const userId = document.getElementById('user-id').value.trim();
  if (userId) {
    const as = await (await fetch('/metrics/active_sessions?user_id=' + encodeURIComponent(userId))).json();
    document.getElementById('active-sessions').textContent = as.active_sessions;
  }
}
refresh();
setInterval(refresh, 5000);
</script>
</body>
</html>
`
