package templates

const styles = `
body{font-family:system-ui,sans-serif;margin:0 auto;max-width:1200px;padding:0 1rem}
header{display:flex;align-items:center;justify-content:space-between}
nav a{margin-left:1rem}nav a.active{font-weight:bold}
.controls{display:flex;gap:1rem;margin:1rem 0}
.chart{height:360px}
.metric .value{font-size:2rem;margin:0 1rem}
.delta.up{color:#090}.delta.down{color:#c00}
.error-state{background:#fee;border:1px solid #c00;padding:1rem}
.notice{background:#eef;padding:1rem}
table{border-collapse:collapse}td,th{padding:.25rem .5rem;text-align:right}
`

const chartScript = `
function readChart(id){return JSON.parse(document.getElementById(id).textContent)}
function line(x,y,name,extra){return Object.assign({x:x,y:y,name:name,type:"scatter",mode:"lines"},extra||{})}
function drawTickerCharts(id){
  var d=readChart(id),x=d.dates;
  if(document.getElementById("close-chart")){
    Plotly.newPlot("close-chart",[line(x,d.close,"Close")],{title:"Close"});
    Plotly.newPlot("volume-chart",[{x:x,y:d.volume,type:"bar",name:"Volume"}],{title:"Volume"});
    return;
  }
  var price=[{x:x,open:d.open,high:d.high,low:d.low,close:d.close,type:"candlestick",name:"Price"}];
  if(d.ema_fast){price.push(line(x,d.ema_fast,"EMA fast"),line(x,d.ema_slow,"EMA slow"))}
  Plotly.newPlot("price-chart",price,{title:"Price",xaxis:{rangeslider:{visible:false}}});
  if(d.rsi){Plotly.newPlot("rsi-chart",[line(x,d.rsi,"RSI")],{title:"RSI",yaxis:{range:[0,100]}})}
  if(d.macd&&document.getElementById("macd-chart")){
    Plotly.newPlot("macd-chart",[line(x,d.macd,"MACD"),line(x,d.macd_signal,"Signal"),{x:x,y:d.macd_histogram,type:"bar",name:"Histogram"}],{title:"MACD"});
  }
}
function drawComparisonChart(id){
  var d=readChart(id),traces=[];
  Object.keys(d.series).sort().forEach(function(s){traces.push(line(d.dates,d.series[s],s,{connectgaps:true}))});
  Plotly.newPlot("compare-chart",traces,{yaxis:{title:"Normalised (first close = 100)"}});
}
`
