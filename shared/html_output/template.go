package htmloutput

// htmlTemplate is the embedded HTML template for the comparison report
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Scanner Comparison - {{.Image}}</title>
    <style>
        :root {
            --bg-primary: #0d1117;
            --bg-secondary: #161b22;
            --bg-tertiary: #21262d;
            --text-primary: #f0f6fc;
            --text-secondary: #8b949e;
            --border-color: #30363d;
            --critical: #f85149;
            --high: #db6d28;
            --medium: #d29922;
            --low: #3fb950;
            --info: #58a6ff;
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
            padding: 20px;
        }

        .container { max-width: 1280px; margin: 0 auto; }

        header {
            text-align: center;
            padding: 40px 20px;
            background: linear-gradient(135deg, var(--bg-secondary) 0%, var(--bg-tertiary) 100%);
            border-radius: 16px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
        }

        header h1 { font-size: 2.2em; margin-bottom: 10px; }

        .meta { color: var(--text-secondary); font-size: 0.9em; }

        .summary-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }

        .summary-card {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 20px;
            text-align: center;
        }

        .summary-card.critical { border-left: 4px solid var(--critical); }
        .summary-card.high { border-left: 4px solid var(--high); }
        .summary-card.medium { border-left: 4px solid var(--medium); }
        .summary-card.low { border-left: 4px solid var(--low); }
        .summary-card.total { border-left: 4px solid var(--info); }

        .summary-card h3 {
            color: var(--text-secondary);
            font-size: 0.8em;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 8px;
        }

        .summary-card .value { font-size: 2.2em; font-weight: 700; }

        .section {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            margin-bottom: 20px;
            padding: 20px 24px;
        }

        .section h2 { font-size: 1.2em; margin-bottom: 16px; }

        .findings-table { width: 100%; border-collapse: collapse; }

        .findings-table th {
            text-align: left;
            padding: 10px 12px;
            background: var(--bg-tertiary);
            color: var(--text-secondary);
            font-size: 0.8em;
            text-transform: uppercase;
            border-bottom: 1px solid var(--border-color);
        }

        .findings-table td {
            padding: 10px 12px;
            border-bottom: 1px solid var(--border-color);
            vertical-align: top;
        }

        .findings-table tr.mismatch td { background: rgba(210, 153, 34, 0.06); }

        .severity-badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 20px;
            font-size: 0.75em;
            font-weight: 600;
        }

        .severity-critical { color: var(--critical); border: 1px solid var(--critical); }
        .severity-high { color: var(--high); border: 1px solid var(--high); }
        .severity-medium { color: var(--medium); border: 1px solid var(--medium); }
        .severity-low { color: var(--low); border: 1px solid var(--low); }
        .severity-info { color: var(--text-secondary); border: 1px solid var(--border-color); }

        .package { font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', monospace; color: var(--info); }
        .missing { color: var(--text-secondary); }
        .failed { color: var(--critical); }

        a { color: var(--info); text-decoration: none; }

        footer { text-align: center; padding: 30px; color: var(--text-secondary); font-size: 0.85em; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>🔍 Scanner Comparison</h1>
            <p class="meta">Image: <strong>{{.Image}}</strong> | Generated: {{.GeneratedAt}} | Report: {{.ReportID}}</p>
        </header>

        <div class="summary-grid">
            <div class="summary-card total"><h3>Unique</h3><div class="value">{{.Summary.TotalUnique}}</div></div>
            <div class="summary-card total"><h3>Shared</h3><div class="value">{{.Summary.Shared}}</div></div>
            <div class="summary-card medium"><h3>Severity Mismatches</h3><div class="value">{{.Summary.Mismatches}}</div></div>
            <div class="summary-card critical"><h3>Critical</h3><div class="value">{{.Summary.Critical}}</div></div>
            <div class="summary-card high"><h3>High</h3><div class="value">{{.Summary.High}}</div></div>
            <div class="summary-card medium"><h3>Medium</h3><div class="value">{{.Summary.Medium}}</div></div>
            <div class="summary-card low"><h3>Low</h3><div class="value">{{.Summary.Low}}</div></div>
        </div>

        <div class="section">
            <h2>Scanners</h2>
            <table class="findings-table">
                <thead><tr><th>Scanner</th><th>Version</th><th>Findings</th><th>Only Here</th></tr></thead>
                <tbody>
                {{range .Scanners}}
                    <tr><td>{{.Name}}</td><td>{{.Version}}</td><td>{{.Findings}}</td><td>{{.Only}}</td></tr>
                {{end}}
                {{range .Failed}}
                    <tr><td>{{.Name}}</td><td colspan="3" class="failed">{{.Error}}</td></tr>
                {{end}}
                </tbody>
            </table>
        </div>

        <div class="section">
            <h2>Vulnerabilities</h2>
            {{if .Rows}}
            <table class="findings-table">
                <thead>
                    <tr>
                        <th>Severity</th><th>Vulnerability</th><th>Package</th><th>Installed</th><th>Fixed</th><th>CVSS</th>
                        {{range .Scanners}}<th>{{.Name}}</th>{{end}}
                    </tr>
                </thead>
                <tbody>
                {{range .Rows}}
                    <tr{{if .Mismatch}} class="mismatch"{{end}}>
                        <td><span class="severity-badge {{severityClass .Severity}}">{{.Severity}}</span></td>
                        <td>{{if .URL}}<a href="{{.URL}}">{{.ID}}</a>{{else}}{{.ID}}{{end}}</td>
                        <td class="package">{{.Package}}</td>
                        <td>{{.Installed}}</td>
                        <td>{{.Fixed}}</td>
                        <td>{{.CVSS}}</td>
                        {{range .PerScanner}}
                        <td>{{if .}}<span class="severity-badge {{severityClass .}}">{{.}}</span>{{else}}<span class="missing">-</span>{{end}}</td>
                        {{end}}
                    </tr>
                {{end}}
                </tbody>
            </table>
            {{else}}
            <p class="missing">No vulnerabilities reported.</p>
            {{end}}
        </div>

        <footer>Generated by {{.Tool}}</footer>
    </div>
</body>
</html>
`
