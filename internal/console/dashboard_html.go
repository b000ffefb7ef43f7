package console

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Provider Analytics</title>
<style>
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
:root{
  --bg:#0f1117;--bg-card:#161b22;--bg-input:#0d1117;
  --border:#30363d;--text:#e1e4e8;--text-muted:#8b949e;
  --primary:#58a6ff;--green:#3fb950;--red:#f85149;--yellow:#d29922;--blue:#58a6ff;--gray:#8b949e;
  --radius:8px;--radius-sm:4px;
}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;background:var(--bg);color:var(--text);line-height:1.5}
button{cursor:pointer;font-family:inherit;font-size:13px;background:var(--bg-input);color:var(--text);border:1px solid var(--border);border-radius:var(--radius-sm);padding:4px 10px}
button:disabled{opacity:.4;cursor:not-allowed}
input,select{background:var(--bg-input);color:var(--text);border:1px solid var(--border);border-radius:var(--radius-sm);padding:4px 8px;font-size:13px}
header{background:var(--bg-card);border-bottom:1px solid var(--border);padding:12px 24px;display:flex;gap:16px;align-items:center}
header h1{font-size:20px}
header .spacer{margin-left:auto}
.container{max-width:1400px;margin:0 auto;padding:24px}
.card{background:var(--bg-card);border:1px solid var(--border);border-radius:var(--radius);padding:16px;margin-bottom:24px}
.card h2{font-size:16px;margin-bottom:12px;display:flex;gap:8px;align-items:center}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(300px,1fr));gap:12px}
.insight{border:1px solid var(--border);border-radius:var(--radius-sm);padding:12px}
.insight p{color:var(--text-muted);font-size:13px;margin:6px 0}
.badge{display:inline-block;padding:1px 8px;border-radius:10px;font-size:11px;font-weight:600;border:1px solid currentColor}
.tone-green{color:var(--green)}.tone-red{color:var(--red)}.tone-yellow{color:var(--yellow)}.tone-blue{color:var(--blue)}.tone-gray{color:var(--gray)}
.demo{background:rgba(210,153,34,.12);border:1px solid var(--yellow);color:var(--yellow);padding:8px 12px;border-radius:var(--radius-sm);margin-bottom:12px;font-size:13px}
.error{color:var(--red);font-size:13px;margin-bottom:8px}
table{width:100%;border-collapse:collapse;font-size:13px}
th,td{text-align:left;padding:6px 8px;border-bottom:1px solid var(--border)}
th{color:var(--text-muted);font-weight:600}
form{display:flex;gap:8px;flex-wrap:wrap;margin-bottom:12px}
.notice{position:fixed;bottom:16px;right:16px;background:var(--bg-card);border:1px solid var(--border);border-radius:var(--radius);padding:10px 14px;display:none}
</style>
</head>
<body>
<header>
  <h1>Provider Analytics</h1>
  <span class="spacer"></span>
  <button id="keyBtn">API key</button>
  <button id="refreshBtn">Refresh</button>
</header>
<div class="container">
  <section class="card">
    <h2>Active insights</h2>
    <div id="insightsDemo" class="demo" style="display:none">Showing demo insights. Live insights are unavailable.</div>
    <div id="insightsError" class="error"></div>
    <div id="insights" class="grid"></div>
  </section>

  <section class="card">
    <h2>Create report</h2>
    <form id="reportForm">
      <select name="reportType">
        <option>BATTERY_HEALTH</option><option>ENERGY_CONSUMPTION</option><option>CHARGING_BEHAVIOR</option>
        <option>RANGE_ANALYSIS</option><option>PERFORMANCE_METRICS</option>
      </select>
      <input name="datasetId" placeholder="Dataset ID" required>
      <input name="title" placeholder="Title">
      <input name="description" placeholder="Description">
      <button type="submit">Create</button>
    </form>
    <div id="reportsError" class="error"></div>
    <table><thead><tr><th>ID</th><th>Title</th><th>Type</th><th>Dataset</th><th>Status</th><th>Created</th><th></th></tr></thead>
    <tbody id="reports"></tbody></table>
  </section>

  <section class="card">
    <h2>Create prediction</h2>
    <form id="predictionForm">
      <select name="predictionType">
        <option>BATTERY_DEGRADATION</option><option>RANGE_ESTIMATION</option><option>CHARGING_TIME</option>
        <option>ENERGY_CONSUMPTION</option><option>MAINTENANCE_PREDICTION</option>
      </select>
      <input name="datasetId" placeholder="Dataset ID" required>
      <input name="modelVersion" value="v1.0">
      <button type="submit">Create</button>
    </form>
    <div id="predictionsError" class="error"></div>
    <table><thead><tr><th>ID</th><th>Type</th><th>Dataset</th><th>Model</th><th>Status</th><th>Confidence</th><th>Created</th></tr></thead>
    <tbody id="predictions"></tbody></table>
  </section>
</div>
<div id="notice" class="notice"></div>

<script>
(function() {
  'use strict';

  function g(id) { return document.getElementById(id); }

  function esc(s) {
    var d = document.createElement('div');
    d.textContent = s == null ? '' : String(s);
    return d.innerHTML;
  }

  function badge(b) {
    if (!b) return '-';
    return '<span class="badge tone-' + esc(b.tone) + '">' + esc(b.label) + '</span>';
  }

  function apiFetch(path, opts) {
    opts = opts || {};
    var headers = { 'Content-Type': 'application/json' };
    var key = sessionStorage.getItem('analytics-console-key');
    if (key) headers['Authorization'] = 'Bearer ' + key;
    opts.headers = headers;
    opts.credentials = 'same-origin';
    return fetch(path, opts).then(function(resp) {
      return resp.json().then(function(data) {
        if (!resp.ok) throw new Error(data.error || ('HTTP ' + resp.status));
        return data;
      });
    });
  }

  function notice(msg) {
    var el = g('notice');
    el.textContent = msg;
    el.style.display = 'block';
    setTimeout(function() { el.style.display = 'none'; }, 3000);
  }

  function renderInsights(v) {
    g('insightsDemo').style.display = v.demo ? 'block' : 'none';
    g('insightsError').textContent = v.demo ? '' : (v.error || '');
    g('insights').innerHTML = (v.rows || []).map(function(row) {
      return '<div class="insight">' +
        '<strong>' + esc(row.title) + '</strong> ' + badge(row.severity) +
        '<p>' + esc(row.description) + '</p>' +
        '<p>' + esc(row.type) + ' &middot; ' + esc(row.generated) + '</p>' +
        '<button data-deactivate="' + row.id + '"' + (row.deactivateDisabled ? ' disabled' : '') + '>' +
        (row.deactivating ? 'Deactivating...' : 'Deactivate') + '</button></div>';
    }).join('');
  }

  function renderReports(v) {
    g('reportsError').textContent = v.error || '';
    g('reports').innerHTML = (v.rows || []).map(function(row) {
      return '<tr><td>' + row.id + '</td><td>' + esc(row.title) + '</td><td>' + esc(row.type) + '</td>' +
        '<td>' + row.datasetId + '</td><td>' + badge(row.status) + '</td><td>' + esc(row.created) + '</td>' +
        '<td><a href="/api/reports/' + row.id + '/export/pdf">PDF</a> ' +
        '<a href="/api/reports/' + row.id + '/export/excel">Excel</a> ' +
        '<a href="/api/reports/' + row.id + '/export/csv">CSV</a> ' +
        '<button data-delete="' + row.id + '">Delete</button></td></tr>';
    }).join('');
  }

  function renderPredictions(v) {
    g('predictionsError').textContent = v.error || '';
    g('predictions').innerHTML = (v.rows || []).map(function(row) {
      return '<tr><td>' + row.id + '</td><td>' + esc(row.type) + '</td><td>' + row.datasetId + '</td>' +
        '<td>' + esc(row.modelVersion) + '</td><td>' + badge(row.status) + '</td>' +
        '<td>' + (row.confidence ? badge(row.confidence) + ' ' + esc(row.percent) : '-') + '</td>' +
        '<td>' + esc(row.created) + '</td></tr>';
    }).join('');
  }

  function load() {
    apiFetch('/api/page').then(function(page) {
      renderInsights(page.insights);
      renderReports(page.reports);
      renderPredictions(page.predictions);
    }).catch(function(err) { notice(err.message); });
  }

  function formBody(form) {
    var body = {};
    new FormData(form).forEach(function(v, k) { body[k] = v; });
    return JSON.stringify(body);
  }

  g('reportForm').addEventListener('submit', function(e) {
    e.preventDefault();
    var form = e.target;
    apiFetch('/api/reports', { method: 'POST', body: formBody(form) }).then(function() {
      form.reset();
      notice('Report created');
      load();
    }).catch(function(err) { notice(err.message); });
  });

  g('predictionForm').addEventListener('submit', function(e) {
    e.preventDefault();
    var form = e.target;
    apiFetch('/api/predictions', { method: 'POST', body: formBody(form) }).then(function() {
      form.reset();
      notice('Prediction created');
      load();
    }).catch(function(err) { notice(err.message); });
  });

  document.addEventListener('click', function(e) {
    var id = e.target.getAttribute('data-deactivate');
    if (id && confirm('Are you sure you want to deactivate this insight?')) {
      apiFetch('/api/insights/' + id + '/deactivate?confirm=true', { method: 'POST' })
        .then(function() { notice('Insight deactivated successfully'); load(); })
        .catch(function(err) { notice(err.message); });
    }
    id = e.target.getAttribute('data-delete');
    if (id && confirm('Are you sure you want to delete this report?')) {
      apiFetch('/api/reports/' + id + '?confirm=true', { method: 'DELETE' })
        .then(function() { load(); })
        .catch(function(err) { notice(err.message); });
    }
  });

  g('keyBtn').addEventListener('click', function() {
    var key = prompt('Console API key');
    if (key !== null) sessionStorage.setItem('analytics-console-key', key);
    load();
  });
  g('refreshBtn').addEventListener('click', load);

  load();
})();
</script>
</body>
</html>
`
