package html

// FindingsReportTemplate renders the findings summary as a single page
const FindingsReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>PDP Findings - {{.ReportDate}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.5;
        }

        .container { max-width: 1400px; margin: 0 auto; padding: 20px; }

        header {
            background: linear-gradient(135deg, #2e7d32 0%, #1b5e20 100%);
            color: white;
            padding: 32px 20px;
            margin-bottom: 24px;
            border-radius: 8px;
        }

        header h1 { font-size: 2.2em; margin-bottom: 6px; }

        .summary {
            background: white;
            padding: 20px;
            border-radius: 8px;
            margin-bottom: 24px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.05);
        }

        .stats {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 12px;
            margin-top: 12px;
        }

        .stat-card {
            background: #f8f9fa;
            padding: 12px;
            border-radius: 6px;
            border-left: 4px solid #2e7d32;
        }

        .stat-card.alert { border-left-color: #d32f2f; }
        .stat-card .label { font-size: 0.85em; color: #6c757d; }
        .stat-card .value { font-size: 1.6em; font-weight: bold; }

        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
            border-radius: 8px;
            overflow: hidden;
        }

        th {
            background: #eef1f4;
            padding: 10px;
            text-align: left;
            font-weight: 600;
            border-bottom: 2px solid #dee2e6;
        }

        td {
            padding: 10px;
            border-bottom: 1px solid #e9ecef;
            vertical-align: top;
            white-space: pre-line;
        }

        .pricing-bad { color: #d32f2f; font-weight: bold; }
        .cat-price { background: #fff8e1; }
        .cat-size { background: #e3f2fd; }
        .cat-catalog { background: #fce4ec; }
        .cat-photo { background: #f3e5f5; }
        .cat-default { background: #fafafa; }

        .empty { text-align: center; padding: 60px 20px; color: #6c757d; }

        footer { text-align: center; padding: 30px 20px; color: #6c757d; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>PDP Findings</h1>
            <p>{{if .Section}}{{.Section}} · {{end}}{{if .Region}}{{.Region}} · {{end}}Generated on {{.ReportDate}}</p>
        </header>

        <div class="summary">
            <h2>Overview</h2>
            <div class="stats">
                <div class="stat-card">
                    <div class="label">Products Checked</div>
                    <div class="value">{{.TotalProducts}}</div>
                </div>
                <div class="stat-card">
                    <div class="label">Products With Notes</div>
                    <div class="value">{{.ProductsWithNotes}}</div>
                </div>
                <div class="stat-card alert">
                    <div class="label">Incorrect Pricing</div>
                    <div class="value">{{len .IncorrectPricing}}</div>
                </div>
                {{range .CategoryCounts}}
                <div class="stat-card">
                    <div class="label">{{.Header}}</div>
                    <div class="value">{{.Count}}</div>
                </div>
                {{end}}
            </div>
        </div>

        {{if .Rows}}
        <table>
            <thead>
                <tr>
                    <th>Product</th>
                    <th>Pricing</th>
                    {{range .Headers}}<th>{{.}}</th>{{end}}
                </tr>
            </thead>
            <tbody>
                {{range .Rows}}
                <tr>
                    <td>{{.ProductID}}</td>
                    <td>{{if .PricingCorrect}}OK{{else}}<span class="pricing-bad">Incorrect</span>{{end}}</td>
                    {{range .Notes}}<td class="{{if .Text}}{{categoryClass .Category}}{{end}}">{{.Text}}</td>{{end}}
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <div class="empty">
            <h3>No findings</h3>
            <p>Every checked product matched the workbook.</p>
        </div>
        {{end}}

        <footer>
            <p>Generated by <strong>PDP Recon</strong></p>
        </footer>
    </div>
</body>
</html>
`
