package dashboard

import "net/http"

func (s *Server) serveFrontend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(frontendHTML))
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Poly Watch</title>
<style>
:root{--bg:#08090d;--sf:#0f1118;--sf2:#161923;--bd:#252a3a;--tx:#c8cdd8;--tx2:#8891a5;--tx3:#5a6278;--ac:#3b82f6;--gn:#10b981;--rd:#ef4444;--or:#f59e0b}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:ui-monospace,monospace;background:var(--bg);color:var(--tx);min-height:100vh}
.app{max-width:1200px;margin:0 auto;padding:20px 24px}
.hdr{display:flex;justify-content:space-between;align-items:center;padding:14px 0;border-bottom:1px solid var(--bd);margin-bottom:20px}
.hdr h1{font-size:20px;font-weight:700;color:var(--ac)}
.hdr .upd{font-size:11px;color:var(--tx3)}
form{background:var(--sf);border:1px solid var(--bd);border-radius:10px;padding:16px;margin-bottom:18px}
textarea{width:100%;min-height:64px;background:var(--sf2);color:var(--tx);border:1px solid var(--bd);border-radius:8px;padding:10px;font-family:inherit;font-size:12px}
.row{display:flex;gap:10px;align-items:center;margin-top:10px}
select,button{font-family:inherit;font-size:12px;padding:8px 14px;border-radius:8px;border:1px solid var(--bd);background:var(--sf2);color:var(--tx);cursor:pointer}
button.go{background:var(--ac);border-color:var(--ac);color:#fff}
button:disabled{opacity:.4;cursor:default}
.al{padding:10px 14px;border-radius:8px;margin-bottom:10px;border-left:3px solid var(--rd);background:rgba(239,68,68,.06);color:#fca5a5;font-size:12px;display:flex;justify-content:space-between}
.al.warn{border-color:var(--or);background:rgba(245,158,11,.06);color:#fcd34d}
.al span{cursor:pointer;color:var(--tx3)}
.wal{background:var(--sf);border:1px solid var(--bd);border-radius:10px;margin-bottom:14px;overflow:hidden}
.wal-h{display:flex;justify-content:space-between;padding:12px 16px;border-bottom:1px solid var(--bd);background:var(--sf2);font-size:12px}
.bg{padding:2px 8px;border-radius:5px;font-size:9px;font-weight:600;letter-spacing:.5px}
.bg-live{background:rgba(16,185,129,.12);color:var(--gn);border:1px solid rgba(16,185,129,.2)}
.bg-err{background:rgba(239,68,68,.12);color:var(--rd);border:1px solid rgba(239,68,68,.2)}
table{width:100%;border-collapse:collapse}
th{text-align:left;font-size:9px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;padding:8px 14px;border-bottom:1px solid var(--bd)}
td{padding:8px 14px;border-bottom:1px solid rgba(37,42,58,.4);font-size:12px}
.sub{font-size:10px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;padding:10px 16px 4px}
.none{padding:8px 16px 12px;font-size:12px;color:var(--tx3)}
details{padding:8px 16px 12px;font-size:11px;color:var(--tx3)}
details pre{margin-top:6px;white-space:pre-wrap;word-break:break-all;color:var(--tx2)}
</style></head><body>
<div class="app">
<div class="hdr"><h1>POLY WATCH</h1><div class="upd">last updated: <span id="upd">Never</span></div></div>
<form id="f">
<textarea id="addrs" placeholder="wallet addresses (whitespace or comma separated)"></textarea>
<div class="row">
<select id="ival"><option value="15">15s</option><option value="30" selected>30s</option><option value="60">60s</option><option value="120">120s</option></select>
<button type="submit" class="go">Start monitoring</button>
<button type="button" id="stop" disabled>Stop</button>
</div>
</form>
<div id="alerts"></div>
<div id="results"></div>
</div>
<script>
let timerId=null,busy=false,active=[];
const $=id=>document.getElementById(id);
const re=/^0x[0-9a-fA-F]{40}$/;
function parseAddresses(raw){
  const seen={},out=[];
  for(let t of raw.split(/[\s,]+/)){
    t=t.trim().toLowerCase();
    if(!t||seen[t])continue;
    seen[t]=true;out.push(t);
  }
  return out;
}
function alertBox(msg,warn){
  const d=document.createElement('div');
  d.className='al'+(warn?' warn':'');
  d.innerHTML='<div>'+esc(msg)+'</div><span>✕</span>';
  d.querySelector('span').onclick=()=>d.remove();
  $('alerts').appendChild(d);
}
function esc(s){const d=document.createElement('div');d.textContent=s==null?'':String(s);return d.innerHTML}
function fmt(v){
  if(v==null||Number.isNaN(v))return '—';
  const a=Math.abs(v);
  if(a>=1000)return v.toLocaleString(undefined,{maximumFractionDigits:2});
  return v.toLocaleString(undefined,{minimumFractionDigits:2,maximumFractionDigits:4});
}
async function tick(){
  if(busy)return;
  busy=true;
  try{
    const r=await fetch('/api/wallets',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({addresses:active})});
    const j=await r.json();
    if(!r.ok)throw new Error(j.error||('request failed with status '+r.status));
    render(j);
    $('upd').textContent=new Date().toLocaleTimeString();
  }catch(e){alertBox(e.message)}
  finally{busy=false}
}
function render(snap){
  const out=[];
  for(const res of snap.results||[]){
    let h='<div class="wal"><div class="wal-h"><span>'+esc(res.address)+'</span>';
    if(res.error){
      h+='<span class="bg bg-err">API ERROR</span></div><div class="none">'+esc(res.error)+'</div></div>';
      out.push(h);continue;
    }
    h+='<span class="bg bg-live">LIVE</span></div>';
    h+='<div class="sub">Positions</div>';
    if(!res.positions||!res.positions.length){h+='<div class="none">no open positions</div>'}
    else{
      h+='<table><tr><th>Market</th><th>Outcome</th><th>Size</th><th>Avg</th><th>Last</th><th>Value</th></tr>';
      for(const p of res.positions)h+='<tr><td>'+esc(p.question||p.slug)+'</td><td>'+esc(p.outcome)+'</td><td>'+fmt(p.size)+'</td><td>'+fmt(p.avg_price)+'</td><td>'+fmt(p.last_price)+'</td><td>'+fmt(p.value)+'</td></tr>';
      h+='</table>';
    }
    h+='<div class="sub">Open orders</div>';
    if(!res.open_orders||!res.open_orders.length){h+='<div class="none">no open orders</div>'}
    else{
      h+='<table><tr><th>Market</th><th>Outcome</th><th>Side</th><th>Type</th><th>Price</th><th>Size</th><th>Remaining</th><th>Status</th></tr>';
      for(const o of res.open_orders)h+='<tr><td>'+esc(o.question||o.slug)+'</td><td>'+esc(o.outcome)+'</td><td>'+esc(o.side)+'</td><td>'+esc(o.order_type)+'</td><td>'+fmt(o.price)+'</td><td>'+fmt(o.size)+'</td><td>'+fmt(o.size_remaining)+'</td><td>'+esc(o.status)+'</td></tr>';
      h+='</table>';
    }
    h+='<details><summary>raw payload</summary><pre>'+esc(JSON.stringify({positions:res.raw_positions,orders:res.raw_orders}))+'</pre></details>';
    h+='</div>';
    out.push(h);
  }
  $('results').innerHTML=out.join('');
}
$('f').addEventListener('submit',e=>{
  e.preventDefault();
  $('alerts').innerHTML='';
  const addrs=parseAddresses($('addrs').value);
  if(!addrs.length){alertBox('provide at least one wallet address',true);return}
  const bad=addrs.filter(a=>!re.test(a));
  if(bad.length){alertBox('invalid addresses: '+bad.join(', '),true);return}
  if(timerId)clearInterval(timerId);
  active=addrs;
  $('stop').disabled=false;
  tick();
  timerId=setInterval(tick,parseInt($('ival').value,10)*1000);
});
$('stop').addEventListener('click',()=>{
  if(timerId){clearInterval(timerId);timerId=null}
  active=[];
  $('stop').disabled=true;
  $('results').innerHTML='';
  $('upd').textContent='Never';
});
window.addEventListener('beforeunload',()=>{if(timerId)clearInterval(timerId)});
</script>
</body></html>`
